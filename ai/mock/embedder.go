package mock

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/poiesic/indexit/ai"
)

// Dimension is the width of vectors produced by the default behavior.
const Dimension = 384

// MockEmbedder is a configurable ai.Embedder for tests. Leave the function
// fields nil for deterministic hash-derived vectors, or set them to script
// failures and fixed responses.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	calls int
}

var _ ai.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder returns a mock with the default deterministic behavior.
// The concrete type is returned so tests can reach CallCount and the
// override fields.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns the override's result when EmbedTextFunc is set, and a
// deterministic vector derived from text otherwise.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.calls++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return vectorFor(text), nil
}

// EmbedTexts embeds each text the way EmbedText does, so a batch result
// always matches the single-text result for the same input.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = vectorFor(text)
	}
	return vectors, nil
}

// CallCount reports how many times either embed method was invoked,
// including calls served by the override fields.
func (m *MockEmbedder) CallCount() int {
	return m.calls
}

// Reset clears the call count and removes any overrides.
func (m *MockEmbedder) Reset() {
	m.calls = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// vectorFor derives a unit vector from text alone. Identical text yields an
// identical vector in every process; distinct texts collide only if their
// hashes do.
func vectorFor(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(len(text))))

	vec := make([]float32, Dimension)
	var sq float64
	for i := range vec {
		v := rng.Float64()*2 - 1
		vec[i] = float32(v)
		sq += v * v
	}
	if sq == 0 {
		vec[0] = 1
		return vec
	}

	norm := float32(1 / math.Sqrt(sq))
	for i := range vec {
		vec[i] *= norm
	}
	return vec
}
