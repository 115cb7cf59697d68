package build

import "errors"

var (
	// ErrEmbedderRequired is returned when NewBuilder is called without an embedder
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrCheckpointStoreRequired is returned when NewBuilder is called without a checkpoint store
	ErrCheckpointStoreRequired = errors.New("checkpoint store is required")

	// ErrIndexPathRequired is returned when NewBuilder is called with an empty index path
	ErrIndexPathRequired = errors.New("index path is required")

	// ErrLimiterNil is returned when WithLimiter is given a nil limiter
	ErrLimiterNil = errors.New("limiter cannot be nil")

	// ErrInvalidBatchSize is returned when Config.BatchSize is not positive
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidRequestsPerWindow is returned when Config.RequestsPerWindow is not positive
	ErrInvalidRequestsPerWindow = errors.New("requests per window must be greater than 0")

	// ErrInvalidWindow is returned when Config.Window is not positive
	ErrInvalidWindow = errors.New("window duration must be greater than 0")

	// ErrInvalidCheckpointEvery is returned when Config.CheckpointEvery is not positive
	ErrInvalidCheckpointEvery = errors.New("checkpoint interval must be greater than 0")

	// ErrInvalidMaxRetries is returned when Config.MaxRetries is negative
	ErrInvalidMaxRetries = errors.New("max retries cannot be negative")

	// ErrInvalidBackoff is returned when Config.BaseBackoff or Config.MaxBackoff is invalid
	ErrInvalidBackoff = errors.New("backoff delays must be positive and max must not be below base")

	// ErrEmbeddingCountMismatch is returned when the embedding service responds
	// with a different number of vectors than texts submitted
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
