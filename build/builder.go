// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/ratelimit"
	"github.com/poiesic/indexit/retry"
	"github.com/poiesic/indexit/storage"
	"github.com/poiesic/indexit/vector"
)

// emergencySuffix distinguishes abort-time artifacts from the regular
// index so a later fresh build never mistakes them for a finished index.
const emergencySuffix = ".emergency"

// Report summarizes a finished build run.
type Report struct {
	// State is the terminal state, StateDone or StateFailed
	State State
	// BatchesTotal is the number of batches the corpus partitions into
	BatchesTotal int
	// BatchesCompleted counts batches covered by the index, including
	// batches restored from a checkpoint on resume
	BatchesCompleted int
	// VectorsWritten is the number of vectors held by the index
	VectorsWritten int64
	// IndexPath is the base path of the index artifacts
	IndexPath string
	// EmergencyPath is the base path of abort-time artifacts, empty unless
	// an abort wrote them
	EmergencyPath string
	// Verified reports whether the saved index passed read-back verification
	Verified bool
	// Elapsed is the wall-clock duration of the run
	Elapsed time.Duration
}

// Builder drives the embed-checkpoint-verify lifecycle of an index build.
// A Builder is not safe for concurrent use; batches are processed strictly
// in order because the embedding quota is shared.
type Builder struct {
	embedder    ai.Embedder
	checkpoints storage.CheckpointStore
	limiter     *ratelimit.Limiter
	executor    *retry.Executor
	config      *Config
	indexPath   string
	progress    io.Writer
	monitor     BuildMonitor
	logger      *slog.Logger

	state        State
	currentBatch int
	startTime    time.Time
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithMonitor sets a build monitor receiving lifecycle callbacks.
// Default is a no-op monitor.
func WithMonitor(monitor BuildMonitor) Option {
	return func(b *Builder) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		b.monitor = monitor
		return nil
	}
}

// WithProgress sets the writer receiving progress lines (typically
// os.Stderr). Default discards them.
func WithProgress(w io.Writer) Option {
	return func(b *Builder) error {
		if w == nil {
			w = io.Discard
		}
		b.progress = w
		return nil
	}
}

// WithLimiter replaces the limiter built from the config, letting tests
// inject one driven by a fake clock.
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(b *Builder) error {
		if limiter == nil {
			return ErrLimiterNil
		}
		b.limiter = limiter
		return nil
	}
}

// NewBuilder creates a builder writing index artifacts under indexPath.
// A nil config uses DefaultConfig().
func NewBuilder(embedder ai.Embedder, checkpoints storage.CheckpointStore, config *Config, indexPath string, opts ...Option) (*Builder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointStoreRequired
	}
	if indexPath == "" {
		return nil, ErrIndexPathRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	limiter, err := ratelimit.New(config.RequestsPerWindow, config.Window)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		embedder:    embedder,
		checkpoints: checkpoints,
		limiter:     limiter,
		config:      config,
		indexPath:   indexPath,
		progress:    io.Discard,
		monitor:     &noopMonitor{},
		logger:      slog.Default().With("component", "builder"),
		state:       StateInit,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	executor, err := retry.NewExecutor(config.MaxRetries, config.BaseBackoff, config.MaxBackoff,
		retry.WithLogger(b.logger),
		retry.WithAttemptFunc(b.onRetry),
	)
	if err != nil {
		return nil, err
	}
	b.executor = executor

	return b, nil
}

// Run builds the index over fragments. With resume true it continues from
// the stored checkpoint; absence of one is an error surfaced before any
// embedding call. With resume false it starts fresh, discarding any stale
// checkpoint. The returned Report describes the terminal state even when
// err is non-nil.
func (b *Builder) Run(ctx context.Context, fragments []core.Fragment, resume bool) (*Report, error) {
	b.startTime = time.Now()

	batches, err := Partition(fragments, b.config.BatchSize)
	if err != nil {
		return nil, err
	}

	report := &Report{
		BatchesTotal: len(batches),
		IndexPath:    b.indexPath,
	}

	b.setState(StateResolvingStart)
	start, idx, err := b.resolveStart(ctx, batches, resume)
	if err != nil {
		// Nothing new has been built; leave any prior checkpoint and
		// artifacts exactly as they were.
		return b.fail(report, err)
	}

	completed := start - 1

	tracker := NewProgressTracker(b.progress, len(fragments), b.config.BatchSize)
	tracker.Start()
	tracker.Update(idx.Len())

	b.setState(StateEmbedding)
	for i := start; i < len(batches); i++ {
		if err := ctx.Err(); err != nil {
			return b.abort(ctx, report, completed, idx, err)
		}

		batch := batches[i]
		b.currentBatch = i
		b.monitor.BatchStarted(batch)

		if err := b.limiter.Acquire(ctx, 1); err != nil {
			return b.abort(ctx, report, completed, idx, err)
		}

		vectors, err := b.embedBatch(ctx, batch)
		if err != nil {
			return b.abort(ctx, report, completed, idx, err)
		}

		if err := idx.Append(vectors, batch.Fragments); err != nil {
			return b.abort(ctx, report, completed, idx, err)
		}

		completed = i
		tracker.Update(idx.Len())
		b.monitor.BatchCompleted(batch, int64(idx.Len()))

		// Periodic checkpoint, except when the final batch lands on the
		// interval: FINALIZING covers it.
		if (i+1)%b.config.CheckpointEvery == 0 && i != len(batches)-1 {
			if err := b.writeCheckpoint(ctx, StateCheckpointing, idx, completed); err != nil {
				return b.abort(ctx, report, completed, idx, err)
			}
			b.setState(StateEmbedding)
		}
	}

	tracker.Finish()

	if err := b.writeCheckpoint(ctx, StateFinalizing, idx, completed); err != nil {
		return b.abort(ctx, report, completed, idx, err)
	}

	b.setState(StateVerifying)
	report.BatchesCompleted = completed + 1
	report.VectorsWritten = int64(idx.Len())
	if err := b.verify(idx); err != nil {
		// Artifacts and checkpoint stay on disk for inspection.
		return b.fail(report, err)
	}
	report.Verified = true

	b.setState(StateDone)
	if err := b.checkpoints.Clear(ctx); err != nil {
		report.State = b.state
		report.Elapsed = time.Since(b.startTime)
		b.monitor.Finish(report)
		return report, fmt.Errorf("clearing checkpoint after verified build: %w", err)
	}

	report.State = b.state
	report.Elapsed = time.Since(b.startTime)
	b.logger.Info("build complete",
		"batches", report.BatchesCompleted,
		"vectors", report.VectorsWritten,
		"elapsed", report.Elapsed.Round(time.Millisecond))
	b.monitor.Finish(report)
	return report, nil
}

// resolveStart determines the first batch to embed and the index to append
// into. Fresh builds discard stale checkpoints and start empty; resumed
// builds reload the partial index named by the checkpoint and cross-check
// it against the corpus partition.
func (b *Builder) resolveStart(ctx context.Context, batches []Batch, resume bool) (int, *vector.Index, error) {
	if !resume {
		if err := b.checkpoints.Clear(ctx); err != nil {
			return 0, nil, fmt.Errorf("clearing stale checkpoint: %w", err)
		}
		return 0, vector.New(), nil
	}

	checkpoint, err := b.checkpoints.Load(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	if checkpoint == nil {
		return 0, nil, core.ErrNoCheckpoint
	}

	idx, err := vector.Load(checkpoint.PartialIndexPath)
	if err != nil {
		return 0, nil, fmt.Errorf("loading partial index %q: %w", checkpoint.PartialIndexPath, err)
	}

	if int64(idx.Len()) != checkpoint.VectorsWritten {
		return 0, nil, fmt.Errorf("%w: checkpoint records %d vectors, partial index holds %d",
			core.ErrCheckpointMismatch, checkpoint.VectorsWritten, idx.Len())
	}

	next := int(checkpoint.LastCompletedBatch) + 1
	if next > len(batches) {
		return 0, nil, fmt.Errorf("%w: checkpoint covers %d batches, corpus partitions into %d",
			core.ErrCheckpointMismatch, next, len(batches))
	}

	covered := 0
	for i := 0; i < next; i++ {
		covered += len(batches[i].Fragments)
	}
	if covered != idx.Len() {
		return 0, nil, fmt.Errorf("%w: batches 0..%d cover %d fragments, partial index holds %d",
			core.ErrCheckpointMismatch, next-1, covered, idx.Len())
	}

	b.logger.Info("resuming build",
		"lastCompletedBatch", checkpoint.LastCompletedBatch,
		"vectorsWritten", checkpoint.VectorsWritten,
		"partialIndex", checkpoint.PartialIndexPath)
	return next, idx, nil
}

// embedBatch requests embeddings for one batch, retrying transient
// provider failures. A response with the wrong number of vectors is fatal.
func (b *Builder) embedBatch(ctx context.Context, batch Batch) ([][]float32, error) {
	texts := make([]string, len(batch.Fragments))
	for i, fragment := range batch.Fragments {
		texts[i] = fragment.Text
	}

	var vectors [][]float32
	err := b.executor.Execute(ctx, func(ctx context.Context) error {
		var embedErr error
		vectors, embedErr = b.embedder.EmbedTexts(ctx, texts)
		if embedErr != nil {
			return ai.Classify(embedErr)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: requested %d, got %d", ErrEmbeddingCountMismatch, len(texts), len(vectors))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// writeCheckpoint saves the index snapshot under the regular path and then
// records a checkpoint naming the just-completed batch.
func (b *Builder) writeCheckpoint(ctx context.Context, state State, idx *vector.Index, completed int) error {
	b.setState(state)

	if err := idx.Save(b.indexPath); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	checkpoint := &core.Checkpoint{
		LastCompletedBatch: int64(completed),
		VectorsWritten:     int64(idx.Len()),
		PartialIndexPath:   b.indexPath,
	}
	if err := b.checkpoints.Save(ctx, checkpoint); err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	b.monitor.CheckpointSaved(checkpoint)
	return nil
}

// verify reloads the saved artifacts and checks they reproduce the built
// index: same length and dimension, and a probe with the first stored
// vector must rank its own entry first.
func (b *Builder) verify(idx *vector.Index) error {
	reloaded, err := vector.Load(b.indexPath)
	if err != nil {
		return fmt.Errorf("%w: reloading saved index: %w", core.ErrVerificationFailed, err)
	}
	if reloaded.Len() != idx.Len() {
		return fmt.Errorf("%w: saved index holds %d vectors, expected %d",
			core.ErrVerificationFailed, reloaded.Len(), idx.Len())
	}
	if reloaded.Dimension() != idx.Dimension() {
		return fmt.Errorf("%w: saved index dimension is %d, expected %d",
			core.ErrVerificationFailed, reloaded.Dimension(), idx.Dimension())
	}
	if reloaded.Len() == 0 {
		return nil
	}

	probe, err := reloaded.VectorAt(0)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrVerificationFailed, err)
	}
	results, err := reloaded.Query(probe, 1)
	if err != nil {
		return fmt.Errorf("%w: sample query: %w", core.ErrVerificationFailed, err)
	}
	first, err := reloaded.FragmentAt(0)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrVerificationFailed, err)
	}
	if len(results) == 0 || results[0].Fragment.Id != first.Id {
		return fmt.Errorf("%w: sample query did not rank the probed entry first", core.ErrVerificationFailed)
	}
	return nil
}

// abort performs the emergency save path: one best-effort index save under
// the emergency base and one checkpoint pointing at it, reflecting the
// last fully completed batch. Save failures are logged without masking the
// triggering error. A failed index save skips the checkpoint write so any
// prior checkpoint keeps naming artifacts that exist.
func (b *Builder) abort(ctx context.Context, report *Report, completed int, idx *vector.Index, cause error) (*Report, error) {
	b.setState(StateAborting)
	b.logger.Error("build aborting", "cause", cause, "lastCompletedBatch", completed)

	// The triggering context may already be canceled.
	saveCtx := context.WithoutCancel(ctx)

	emergencyPath := b.indexPath + emergencySuffix
	if err := idx.Save(emergencyPath); err != nil {
		b.logger.Error("emergency index save failed", "path", emergencyPath, "err", err)
	} else {
		report.EmergencyPath = emergencyPath
		checkpoint := &core.Checkpoint{
			LastCompletedBatch: int64(completed),
			VectorsWritten:     int64(idx.Len()),
			PartialIndexPath:   emergencyPath,
		}
		if err := b.checkpoints.Save(saveCtx, checkpoint); err != nil {
			b.logger.Error("emergency checkpoint save failed", "err", err)
		} else {
			b.monitor.CheckpointSaved(checkpoint)
			b.logger.Info("emergency state saved", "path", emergencyPath, "lastCompletedBatch", completed)
		}
	}

	report.BatchesCompleted = completed + 1
	report.VectorsWritten = int64(idx.Len())
	return b.fail(report, cause)
}

// fail finishes the run in StateFailed without touching disk.
func (b *Builder) fail(report *Report, err error) (*Report, error) {
	b.setState(StateFailed)
	report.State = b.state
	report.Elapsed = time.Since(b.startTime)
	b.monitor.Finish(report)
	return report, err
}

func (b *Builder) setState(next State) {
	if next == b.state {
		return
	}
	prev := b.state
	b.state = next
	b.logger.Debug("state transition", "from", prev.String(), "to", next.String())
	b.monitor.StateChanged(prev, next)
}

// onRetry feeds executor attempt callbacks to the monitor with the batch
// currently being embedded.
func (b *Builder) onRetry(attempt int, err error, delay time.Duration) {
	b.monitor.RetryScheduled(b.currentBatch, attempt, err, delay)
}
