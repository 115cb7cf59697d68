package ingestion

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/indexit/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// GroupCues joins consecutive cues into fragments of at most chunkSize
// characters, carrying overlap characters' worth of trailing cues into
// the next fragment. Cues are never split, so every fragment spans whole
// cues and its Start/End are real positions in the source; a single cue
// longer than chunkSize forms its own oversized fragment. Seq numbers are
// positions within this source only.
func GroupCues(source string, cues []Cue, chunkSize, overlap int) ([]core.Fragment, error) {
	if err := validateChunking(chunkSize, overlap); err != nil {
		return nil, err
	}
	if len(cues) == 0 {
		return nil, nil
	}

	var fragments []core.Fragment
	start := 0
	for start < len(cues) {
		end := start
		length := utf8.RuneCountInString(cues[start].Text)
		for end+1 < len(cues) {
			grown := length + 1 + utf8.RuneCountInString(cues[end+1].Text)
			if grown > chunkSize {
				break
			}
			end++
			length = grown
		}

		texts := make([]string, 0, end-start+1)
		for i := start; i <= end; i++ {
			texts = append(texts, cues[i].Text)
		}
		text := strings.Join(texts, "\n")
		fragments = append(fragments, core.Fragment{
			Id:     core.IDFromContent(text),
			Source: source,
			Seq:    int64(len(fragments)),
			Start:  cues[start].Start,
			End:    cues[end].End,
			Text:   text,
		})

		if end == len(cues)-1 {
			break
		}

		// Walk back over the group's tail to find the cues the next
		// fragment starts with. Progress is guaranteed: the walk stops
		// before reaching start, so next > start always.
		next := end + 1
		carried := 0
		for i := end; i > start; i-- {
			carried += utf8.RuneCountInString(cues[i].Text)
			if carried > overlap {
				break
			}
			next = i
		}
		start = next
	}

	return fragments, nil
}

// SplitText splits a plain-text document recursively by size and wraps
// the chunks as fragments. Position markers stay zero: plain text has no
// timeline.
func SplitText(source, text string, chunkSize, overlap int) ([]core.Fragment, error) {
	if err := validateChunking(chunkSize, overlap); err != nil {
		return nil, err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(overlap),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("splitting text: %w", err)
	}

	fragments := make([]core.Fragment, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		fragments = append(fragments, core.Fragment{
			Id:     core.IDFromContent(chunk),
			Source: source,
			Seq:    int64(len(fragments)),
			Text:   chunk,
		})
	}
	return fragments, nil
}

func validateChunking(chunkSize, overlap int) error {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunking, chunkSize, overlap)
	}
	return nil
}
