package retry

import "errors"

var (
	// ErrInvalidMaxRetries is returned when maxRetries is negative.
	ErrInvalidMaxRetries = errors.New("maxRetries must not be negative")

	// ErrInvalidDelay is returned when a backoff delay is <= 0.
	ErrInvalidDelay = errors.New("backoff delays must be greater than 0")

	// ErrNilOperation is returned when Execute is given a nil operation.
	ErrNilOperation = errors.New("operation is nil")
)
