package ai

import "context"

// Embedder turns text into vectors comparable by cosine similarity.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText embeds one text, typically a search query.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds a batch of texts in one request. The result holds
	// one vector per input, in input order; a failed batch returns an
	// error and no partial results.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
