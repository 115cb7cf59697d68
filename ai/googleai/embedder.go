package googleai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/indexit/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Embedder generates embeddings with the Google AI (Gemini) embedding API.
type Embedder struct {
	client embeddings.Embedder
	logger *slog.Logger
}

// NewEmbedder builds an embedder from config, which must carry an API key.
// The context covers client construction only, not later embedding calls.
func NewEmbedder(ctx context.Context, config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating googleai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("wrapping embedding client: %w", err)
	}

	return &Embedder{
		client: embedder,
		logger: slog.Default().With("component", "googleai-embedder"),
	}, nil
}

// EmbedText embeds a single text through the batch path.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("embedding service returned no vector")
	}
	return vectors[0], nil
}

// EmbedTexts embeds texts in one request, preserving input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("embedding batch", "texts", len(texts))

	vectors, err := e.client.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("embedding batch failed", "texts", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}
