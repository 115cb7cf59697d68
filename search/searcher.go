package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/vector"
)

// Searcher provides semantic search over a built index.
type Searcher struct {
	index    *vector.Index
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger replaces the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over index. The embedder must be the
// same provider and model the index was built with; vectors from another
// model rank meaninglessly.
func NewSearcher(index *vector.Index, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		index:    index,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar embeds the query and returns up to maxHits fragments ranked
// by cosine similarity, highest first.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]vector.Result, error) {
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("embedding query failed", "err", err)
		return nil, err
	}

	results, err := s.index.Query(embedding, maxHits)
	if err != nil {
		s.logger.Error("index query failed", "err", err)
		return nil, err
	}

	s.logger.Debug("search complete", "query", query, "hits", len(results))
	return results, nil
}
