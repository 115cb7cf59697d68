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


package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/indexit/core"
)

// AttemptFunc observes a transiently failed attempt right before the
// executor backs off. attempt counts from 1; delay is how long the executor
// will wait before trying again.
type AttemptFunc func(attempt int, err error, delay time.Duration)

// Executor retries operations that fail transiently, doubling the delay
// after each failed attempt up to a cap. Failures not marked with
// core.ErrTransient are fatal and returned immediately without a retry.
type Executor struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	onAttempt  AttemptFunc
	logger     *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets a custom logger for the executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithAttemptFunc registers an observer called before each backoff.
func WithAttemptFunc(fn AttemptFunc) Option {
	return func(e *Executor) {
		e.onAttempt = fn
	}
}

// NewExecutor creates an Executor allowing maxRetries retries after the
// initial attempt, so an operation runs at most maxRetries+1 times.
// baseDelay doubles after every failed attempt and is capped at maxDelay.
func NewExecutor(maxRetries int, baseDelay, maxDelay time.Duration, opts ...Option) (*Executor, error) {
	if maxRetries < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxRetries, maxRetries)
	}
	if baseDelay <= 0 || maxDelay <= 0 {
		return nil, fmt.Errorf("%w: base %v, max %v", ErrInvalidDelay, baseDelay, maxDelay)
	}

	e := &Executor{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		logger:     slog.Default().With("component", "retry"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute runs operation until it succeeds, fails fatally, the context is
// done, or the retry budget runs out. The final transient error is wrapped
// with core.ErrRetriesExhausted.
func (e *Executor) Execute(ctx context.Context, operation func(context.Context) error) error {
	if operation == nil {
		return ErrNilOperation
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			if attempt > 0 {
				e.logger.Debug("operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}

		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}

		if !errors.Is(lastErr, core.ErrTransient) {
			e.logger.Debug("operation failed fatally", "attempt", attempt+1, "error", lastErr)
			return lastErr
		}

		// Don't sleep after the last attempt
		if attempt == e.maxRetries {
			break
		}

		delay := e.delay(attempt)
		e.logger.Debug("operation failed, will retry",
			"attempt", attempt+1, "maxAttempts", e.maxRetries+1, "delay", delay, "error", lastErr)
		if e.onAttempt != nil {
			e.onAttempt(attempt+1, lastErr, delay)
		}

		// Sleep with context awareness
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	e.logger.Debug("retry budget exhausted", "attempts", e.maxRetries+1, "error", lastErr)
	return fmt.Errorf("%w after %d attempts: %w", core.ErrRetriesExhausted, e.maxRetries+1, lastErr)
}

// delay computes baseDelay * 2^attempt, capped at maxDelay.
func (e *Executor) delay(attempt int) time.Duration {
	delay := e.baseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= e.maxDelay {
			return e.maxDelay
		}
	}
	if delay > e.maxDelay {
		return e.maxDelay
	}
	return delay
}
