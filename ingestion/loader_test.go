package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/indexit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCorpus lays out a small mixed corpus: two subtitle files, one
// markdown file, and one unsupported file that must be ignored.
func writeCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	episode1 := "1\n00:00:01,000 --> 00:00:03,000\nLa primera casa guardaba el agua.\n\n" +
		"2\n00:00:03,500 --> 00:00:06,000\nLa segunda casa guardaba el fuego.\n"
	episode2 := "1\n00:00:00,500 --> 00:00:02,000\nNadie recordaba la tercera casa.\n"
	notes := "Registro de casas.\n\nEl agua y el fuego se reparten entre la primera y la segunda casa."

	require.NoError(t, os.WriteFile(filepath.Join(root, "episode01.srt"), []byte(episode1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "episode02.srt"), []byte(episode2), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notas.md"), []byte(notes), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "fuera.json"), []byte(`{"ignorado": true}`), 0o644))

	return root
}

func TestLoader_Load(t *testing.T) {
	root := writeCorpus(t)

	loader, err := NewLoader()
	require.NoError(t, err)
	defer loader.Release()

	fragments, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, fragments, 3)

	for i, f := range fragments {
		assert.Equal(t, int64(i), f.Seq, "global Seq must be contiguous")
		assert.Equal(t, core.IDFromContent(f.Text), f.Id)
		assert.NotEmpty(t, f.Text)
	}

	// Files land in lexical path order; the unsupported file is skipped.
	assert.Equal(t, filepath.Join(root, "episode01.srt"), fragments[0].Source)
	assert.Equal(t, filepath.Join(root, "episode02.srt"), fragments[1].Source)
	assert.Equal(t, filepath.Join(root, "notas.md"), fragments[2].Source)

	// Both cues of episode01 fit one default-sized fragment, with the
	// time range spanning them.
	assert.Equal(t, "La primera casa guardaba el agua.\nLa segunda casa guardaba el fuego.", fragments[0].Text)
	assert.Equal(t, time.Second, fragments[0].Start)
	assert.Equal(t, 6*time.Second, fragments[0].End)

	// Plain text has no timeline.
	assert.Contains(t, fragments[2].Text, "Registro de casas.")
	assert.Zero(t, fragments[2].Start)
	assert.Zero(t, fragments[2].End)
}

func TestLoader_Deterministic(t *testing.T) {
	root := writeCorpus(t)

	loader, err := NewLoader(WithPoolSize(4))
	require.NoError(t, err)
	defer loader.Release()

	first, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first, second, "repeated loads must produce identical fragments")
}

func TestLoader_ChunkingControlsGrouping(t *testing.T) {
	root := t.TempDir()
	episode := "1\n00:00:01,000 --> 00:00:03,000\nLa primera casa guardaba el agua.\n\n" +
		"2\n00:00:03,500 --> 00:00:06,000\nLa segunda casa guardaba el fuego.\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "episode01.srt"), []byte(episode), 0o644))

	// 40 characters fit either cue alone but not both joined.
	loader, err := NewLoader(WithChunking(40, 0))
	require.NoError(t, err)
	defer loader.Release()

	fragments, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, "La primera casa guardaba el agua.", fragments[0].Text)
	assert.Equal(t, "La segunda casa guardaba el fuego.", fragments[1].Text)
}

func TestLoader_Subdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "temporada02")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "episode01.srt"),
		[]byte("1\n00:00:00,000 --> 00:00:01,000\nHola.\n"), 0o644))

	loader, err := NewLoader()
	require.NoError(t, err)
	defer loader.Release()

	fragments, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, filepath.Join(sub, "episode01.srt"), fragments[0].Source)
}

func TestLoader_ParseErrorNamesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "roto.srt"), []byte("uno\nmal\n"), 0o644))

	loader, err := NewLoader()
	require.NoError(t, err)
	defer loader.Release()

	_, err = loader.Load(context.Background(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedCue)
	assert.Contains(t, err.Error(), "roto.srt")
}

func TestLoader_MissingRoot(t *testing.T) {
	loader, err := NewLoader()
	require.NoError(t, err)
	defer loader.Release()

	_, err = loader.Load(context.Background(), filepath.Join(t.TempDir(), "no-existe"))
	assert.Error(t, err)
}

func TestLoader_EmptyDir(t *testing.T) {
	loader, err := NewLoader()
	require.NoError(t, err)
	defer loader.Release()

	fragments, err := loader.Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestNewLoader_Options(t *testing.T) {
	t.Run("pool size clamps to one", func(t *testing.T) {
		loader, err := NewLoader(WithPoolSize(0))
		require.NoError(t, err)
		loader.Release()
	})

	t.Run("invalid chunking", func(t *testing.T) {
		_, err := NewLoader(WithChunking(100, 100))
		assert.ErrorIs(t, err, ErrInvalidChunking)
	})

	t.Run("chunking applies", func(t *testing.T) {
		loader, err := NewLoader(WithChunking(80, 10))
		require.NoError(t, err)
		defer loader.Release()
		assert.Equal(t, 80, loader.chunkSize)
		assert.Equal(t, 10, loader.chunkOverlap)
	})

	t.Run("nil logger uses default", func(t *testing.T) {
		loader, err := NewLoader(WithLogger(nil))
		require.NoError(t, err)
		defer loader.Release()
		assert.NotNil(t, loader.logger)
	})
}
