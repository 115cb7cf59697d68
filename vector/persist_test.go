package vector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/indexit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, n int) *Index {
	t.Helper()
	idx := New()
	vectors := make([][]float32, n)
	frags := make([]core.Fragment, n)
	for i := 0; i < n; i++ {
		vectors[i] = []float32{float32(i), float32(n - i), 0.5}
		frags[i] = core.Fragment{
			Id:     core.IDFromContent(string(rune('a' + i))),
			Source: "série/episode01.srt",
			Seq:    int64(i),
			Start:  time.Duration(i) * 3 * time.Second,
			End:    time.Duration(i+1) * 3 * time.Second,
			Text:   "fragmento número " + string(rune('0'+i)),
		}
	}
	require.NoError(t, idx.Append(vectors, frags))
	return idx
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	idx := buildIndex(t, 5)

	require.NoError(t, idx.Save(base))

	loaded, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, idx.Len(), loaded.Len())
	assert.Equal(t, idx.Dimension(), loaded.Dimension())

	for i := 0; i < idx.Len(); i++ {
		wantVec, err := idx.VectorAt(i)
		require.NoError(t, err)
		gotVec, err := loaded.VectorAt(i)
		require.NoError(t, err)
		assert.Equal(t, wantVec, gotVec, "vector %d", i)

		wantFrag, err := idx.FragmentAt(i)
		require.NoError(t, err)
		gotFrag, err := loaded.FragmentAt(i)
		require.NoError(t, err)
		assert.Equal(t, wantFrag, gotFrag, "fragment %d", i)
	}
}

func TestSaveLoad_EmptyIndex(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	require.NoError(t, New().Save(base))

	loaded, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
	assert.Equal(t, 0, loaded.Dimension())
}

func TestSave_InvalidBasePath(t *testing.T) {
	err := New().Save("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBasePath)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, buildIndex(t, 3).Save(filepath.Join(dir, "index")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-", "staging files must not survive a save")
	}
}

func TestSave_OverwritesInPlace(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	idx := buildIndex(t, 2)
	require.NoError(t, idx.Save(base))

	require.NoError(t, idx.Append(
		[][]float32{{9, 9, 9}},
		[]core.Fragment{{Id: 99, Seq: 2, Text: "late addition"}},
	))
	require.NoError(t, idx.Save(base))

	loaded, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())

	frag, err := loaded.FragmentAt(2)
	require.NoError(t, err)
	assert.Equal(t, "late addition", frag.Text)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nothing-here"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestLoad_LoneVectorArtifact(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	require.NoError(t, buildIndex(t, 3).Save(base))
	require.NoError(t, os.Remove(base+metaExt))

	_, err := Load(base)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingArtifact)
}

func TestLoad_LoneMetadataArtifact(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	require.NoError(t, buildIndex(t, 3).Save(base))
	require.NoError(t, os.Remove(base+vecExt))

	_, err := Load(base)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingArtifact)
}

func TestLoad_BadMagic(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	require.NoError(t, buildIndex(t, 3).Save(base))

	data, err := os.ReadFile(base + vecExt)
	require.NoError(t, err)
	copy(data, "XXXX")
	require.NoError(t, os.WriteFile(base+vecExt, data, 0644))

	_, err = Load(base)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestLoad_TruncatedVectors(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	require.NoError(t, buildIndex(t, 3).Save(base))

	data, err := os.ReadFile(base + vecExt)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(base+vecExt, data[:len(data)-5], 0644))

	_, err = Load(base)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestLoad_CountDisagreement(t *testing.T) {
	dir := t.TempDir()
	baseA := filepath.Join(dir, "a")
	baseB := filepath.Join(dir, "b")
	require.NoError(t, buildIndex(t, 2).Save(baseA))
	require.NoError(t, buildIndex(t, 4).Save(baseB))

	// Pair A's vectors with B's metadata.
	meta, err := os.ReadFile(baseB + metaExt)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(baseA+metaExt, meta, 0644))

	_, err = Load(baseA)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestLoad_TrailingMetadata(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	require.NoError(t, buildIndex(t, 2).Save(base))

	meta, err := os.ReadFile(base + metaExt)
	require.NoError(t, err)
	meta = append(meta, 0xBE, 0xEF)
	require.NoError(t, os.WriteFile(base+metaExt, meta, 0644))

	_, err = Load(base)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestExists(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")

	ok, err := Exists(base)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, buildIndex(t, 2).Save(base))
	ok, err = Exists(base)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.Remove(base+metaExt))
	_, err = Exists(base)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingArtifact)
}

func TestBackup(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	require.NoError(t, buildIndex(t, 3).Save(base))

	backupBase, err := Backup(base)
	require.NoError(t, err)
	assert.Contains(t, backupBase, ".backup-")

	ok, err := Exists(base)
	require.NoError(t, err)
	assert.False(t, ok, "original base path should be vacated")

	loaded, err := Load(backupBase)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
}

func TestQueryAfterReload(t *testing.T) {
	base := filepath.Join(t.TempDir(), "index")
	idx := New()
	require.NoError(t, idx.Append(
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[]core.Fragment{
			{Id: 1, Seq: 0, Text: "x axis"},
			{Id: 2, Seq: 1, Text: "y axis"},
			{Id: 3, Seq: 2, Text: "z axis"},
		},
	))
	require.NoError(t, idx.Save(base))

	loaded, err := Load(base)
	require.NoError(t, err)

	results, err := loaded.Query([]float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "y axis", results[0].Fragment.Text)
	assert.InDelta(t, 1.0, results[0].Score, 0.0001)
}
