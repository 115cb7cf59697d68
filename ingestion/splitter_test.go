package ingestion

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/poiesic/indexit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cueFixture returns n cues of equal length with increasing time ranges.
func cueFixture(n int) []Cue {
	cues := make([]Cue, n)
	for i := range cues {
		cues[i] = Cue{
			Seq:   i + 1,
			Start: time.Duration(i) * 3 * time.Second,
			End:   time.Duration(i)*3*time.Second + 2*time.Second,
			Text:  fmt.Sprintf("réplica %02d de la escena", i),
		}
	}
	return cues
}

func TestGroupCues(t *testing.T) {
	cues := cueFixture(4)

	// 23-rune cues: two fit in 50 (23+1+23), a third does not.
	fragments, err := GroupCues("episode01.srt", cues, 50, 0)
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	first := fragments[0]
	assert.Equal(t, cues[0].Text+"\n"+cues[1].Text, first.Text)
	assert.Equal(t, "episode01.srt", first.Source)
	assert.Equal(t, int64(0), first.Seq)
	assert.Equal(t, cues[0].Start, first.Start)
	assert.Equal(t, cues[1].End, first.End)
	assert.Equal(t, core.IDFromContent(first.Text), first.Id)

	second := fragments[1]
	assert.Equal(t, cues[2].Text+"\n"+cues[3].Text, second.Text)
	assert.Equal(t, int64(1), second.Seq)
	assert.Equal(t, cues[2].Start, second.Start)
	assert.Equal(t, cues[3].End, second.End)
}

func TestGroupCues_Overlap(t *testing.T) {
	cues := cueFixture(4)

	// Overlap covering one cue: every fragment after the first reopens
	// with the previous fragment's last cue.
	fragments, err := GroupCues("episode01.srt", cues, 50, 25)
	require.NoError(t, err)
	require.Len(t, fragments, 3)

	assert.Equal(t, cues[0].Text+"\n"+cues[1].Text, fragments[0].Text)
	assert.Equal(t, cues[1].Text+"\n"+cues[2].Text, fragments[1].Text)
	assert.Equal(t, cues[2].Text+"\n"+cues[3].Text, fragments[2].Text)

	// Time ranges track the carried cues.
	assert.Equal(t, cues[1].Start, fragments[1].Start)
	assert.Equal(t, cues[2].End, fragments[1].End)
	assert.Equal(t, cues[3].End, fragments[2].End)
}

func TestGroupCues_TailNotDuplicated(t *testing.T) {
	cues := cueFixture(5)

	fragments, err := GroupCues("episode01.srt", cues, 50, 25)
	require.NoError(t, err)
	require.NotEmpty(t, fragments)

	// The final cue ends the last fragment; it never becomes an
	// overlap-only fragment of its own.
	last := fragments[len(fragments)-1]
	assert.True(t, strings.HasSuffix(last.Text, cues[4].Text))
	for i, f := range fragments {
		assert.NotEqual(t, cues[4].Text, f.Text, "fragment %d duplicates the tail", i)
	}
}

func TestGroupCues_OversizedCue(t *testing.T) {
	cues := []Cue{
		{Seq: 1, Start: 0, End: time.Second, Text: strings.Repeat("palabra ", 20)},
		{Seq: 2, Start: 2 * time.Second, End: 3 * time.Second, Text: "corta"},
	}

	fragments, err := GroupCues("episode01.srt", cues, 50, 10)
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, cues[0].Text, fragments[0].Text)
	assert.Equal(t, "corta", fragments[1].Text)
}

func TestGroupCues_SingleFragment(t *testing.T) {
	cues := cueFixture(2)

	fragments, err := GroupCues("episode01.srt", cues, 500, 100)
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, cues[0].Start, fragments[0].Start)
	assert.Equal(t, cues[1].End, fragments[0].End)
}

func TestGroupCues_Empty(t *testing.T) {
	fragments, err := GroupCues("episode01.srt", nil, 500, 100)
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestGroupCues_InvalidChunking(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap above size", 100, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GroupCues("episode01.srt", cueFixture(3), tt.size, tt.overlap)
			assert.ErrorIs(t, err, ErrInvalidChunking)

			_, err = SplitText("notas.txt", "texto", tt.size, tt.overlap)
			assert.ErrorIs(t, err, ErrInvalidChunking)
		})
	}
}

func TestSplitText(t *testing.T) {
	paragraphs := make([]string, 6)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf(
			"Párrafo %d: la memoria de las casas se guardaba en registros que nadie leía completos.", i)
	}
	text := strings.Join(paragraphs, "\n\n")

	fragments, err := SplitText("notas.md", text, 200, 40)
	require.NoError(t, err)
	require.Greater(t, len(fragments), 1)

	for i, f := range fragments {
		assert.Equal(t, int64(i), f.Seq)
		assert.Equal(t, "notas.md", f.Source)
		assert.NotEmpty(t, f.Text)
		assert.LessOrEqual(t, utf8.RuneCountInString(f.Text), 200, "fragment %d exceeds the chunk size", i)
		assert.Equal(t, core.IDFromContent(f.Text), f.Id)
		assert.Zero(t, f.Start)
		assert.Zero(t, f.End)
	}
}

func TestSplitText_Short(t *testing.T) {
	fragments, err := SplitText("notas.txt", "Una sola línea corta.", 500, 100)
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "Una sola línea corta.", fragments[0].Text)
}

func TestSplitText_Empty(t *testing.T) {
	fragments, err := SplitText("notas.txt", "", 500, 100)
	require.NoError(t, err)
	assert.Empty(t, fragments)
}
