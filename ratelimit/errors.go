package ratelimit

import "errors"

var (
	// ErrInvalidLimit is returned when the window limit is <= 0.
	ErrInvalidLimit = errors.New("limit must be greater than 0")

	// ErrInvalidWindow is returned when the window duration is <= 0.
	ErrInvalidWindow = errors.New("window must be greater than 0")

	// ErrInvalidPermits is returned when a caller requests <= 0 permits.
	ErrInvalidPermits = errors.New("permits must be greater than 0")

	// ErrPermitsExceedLimit is returned when a single request asks for more
	// permits than the window can ever hold.
	ErrPermitsExceedLimit = errors.New("permits exceed window limit")
)
