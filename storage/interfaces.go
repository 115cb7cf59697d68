package storage

import (
	"context"

	"github.com/poiesic/indexit/core"
)

// CheckpointStore durably persists build progress for a single job.
// Implementations must be thread-safe and must write atomically: a crash
// mid-save never leaves a half-written record observable to a later Load.
type CheckpointStore interface {
	// Save persists the checkpoint, replacing any previous one for the job.
	// The UpdatedAt field is stamped during the save.
	Save(ctx context.Context, checkpoint *core.Checkpoint) error

	// Load retrieves the job's checkpoint. Returns (nil, nil) when none
	// exists. A stored record that fails to decode or validate is an error,
	// never a silently defaulted value.
	Load(ctx context.Context) (*core.Checkpoint, error)

	// Clear removes the job's checkpoint. Clearing when none exists is not
	// an error.
	Clear(ctx context.Context) error
}
