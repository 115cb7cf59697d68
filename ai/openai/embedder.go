package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/indexit/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder generates embeddings through any OpenAI-compatible endpoint,
// including local Ollama and llama.cpp servers.
type Embedder struct {
	client embeddings.Embedder
	logger *slog.Logger
}

// NewEmbedder builds an embedder from config. Local endpoints commonly skip
// authentication, so an empty API key is replaced with a placeholder token
// rather than rejected.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("wrapping embedding client: %w", err)
	}

	return &Embedder{
		client: embedder,
		logger: slog.Default().With("component", "openai-embedder"),
	}, nil
}

// EmbedText embeds a single text. It runs through the batch path so single
// and batch requests behave identically.
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
