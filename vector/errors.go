package vector

import "errors"

var (
	// ErrDimensionMismatch indicates a vector of the wrong width.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrCountMismatch indicates vectors and fragments of different lengths.
	ErrCountMismatch = errors.New("vector and fragment counts differ")

	// ErrOutOfRange indicates a position outside the index.
	ErrOutOfRange = errors.New("position out of range")

	// ErrInvalidK is returned when a query asks for <= 0 results.
	ErrInvalidK = errors.New("k must be greater than 0")

	// ErrInvalidBasePath is returned for an empty artifact base path.
	ErrInvalidBasePath = errors.New("invalid index base path")

	// ErrIndexNotFound indicates neither artifact exists at the base path.
	ErrIndexNotFound = errors.New("index not found")

	// ErrMissingArtifact indicates exactly one of the two artifacts exists.
	// The pair is only ever written together, so a lone artifact means the
	// index is damaged.
	ErrMissingArtifact = errors.New("index artifact missing")

	// ErrCorruptIndex indicates artifacts that fail to decode or disagree
	// with each other.
	ErrCorruptIndex = errors.New("corrupt index artifacts")
)
