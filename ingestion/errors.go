package ingestion

import "errors"

var (
	// ErrMalformedCue is returned when a subtitle block cannot be parsed.
	ErrMalformedCue = errors.New("malformed subtitle cue")

	// ErrInvalidChunking is returned when the chunk size or overlap are out of range.
	ErrInvalidChunking = errors.New("invalid chunking parameters")
)
