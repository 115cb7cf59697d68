package build

import (
	"time"

	"github.com/poiesic/indexit/core"
)

// BuildMonitor provides hooks to observe the build process.
// Implement this interface to track state transitions, batch progress,
// retries, and checkpoint writes during a build.
type BuildMonitor interface {
	StateChanged(from, to State)
	BatchStarted(batch Batch)
	BatchCompleted(batch Batch, vectorsWritten int64)
	RetryScheduled(batchIndex, attempt int, err error, delay time.Duration)
	CheckpointSaved(checkpoint *core.Checkpoint)
	Finish(report *Report)
}

// noopMonitor is a no-op implementation of BuildMonitor
type noopMonitor struct{}

var _ BuildMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) StateChanged(_, _ State)                           {}
func (n *noopMonitor) BatchStarted(_ Batch)                              {}
func (n *noopMonitor) BatchCompleted(_ Batch, _ int64)                   {}
func (n *noopMonitor) RetryScheduled(_, _ int, _ error, _ time.Duration) {}
func (n *noopMonitor) CheckpointSaved(_ *core.Checkpoint)                {}
func (n *noopMonitor) Finish(_ *Report)                                  {}
