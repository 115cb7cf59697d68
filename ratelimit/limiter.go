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


package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Clock abstracts time for the limiter so tests can drive it deterministically.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Limiter grants permits under a sliding-window bound: at most limit permits
// in any interval of the window length, measured over the trailing window
// rather than fixed calendar slots. It is safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time // grant instants still inside the window, oldest first
	clock  Clock
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock substitutes the time source. Used by tests.
func WithClock(clock Clock) Option {
	return func(l *Limiter) {
		l.clock = clock
	}
}

// New creates a Limiter that grants at most limit permits in any
// window-sized interval.
func New(limit int, window time.Duration, opts ...Option) (*Limiter, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidWindow, window)
	}

	l := &Limiter{
		limit:  limit,
		window: window,
		stamps: make([]time.Time, 0, limit),
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Acquire blocks until n permits fit inside the window, then records them.
// It returns immediately with an error when n is not positive, when n can
// never be satisfied, or when ctx is done.
func (l *Limiter) Acquire(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPermits, n)
	}
	if n > l.limit {
		return fmt.Errorf("%w: requested %d, window holds %d", ErrPermitsExceedLimit, n, l.limit)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait, ok := l.take(n)
		if ok {
			return nil
		}

		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// take grants n permits at the current instant when the window has room.
// Otherwise it reports how long until enough grants age out. The sleep in
// Acquire happens outside the lock so waiters never block each other.
func (l *Limiter) take(n int) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.prune(now)

	if len(l.stamps)+n <= l.limit {
		for i := 0; i < n; i++ {
			l.stamps = append(l.stamps, now)
		}
		return 0, true
	}

	// The oldest len+n-limit grants must age out before n permits fit.
	needed := len(l.stamps) + n - l.limit
	wakeAt := l.stamps[needed-1].Add(l.window)
	return wakeAt.Sub(now), false
}

// prune drops grants that have aged out of the window. A grant at t stops
// counting once t+window <= now.
func (l *Limiter) prune(now time.Time) {
	cut := 0
	for cut < len(l.stamps) && !l.stamps[cut].Add(l.window).After(now) {
		cut++
	}
	if cut > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[cut:]...)
	}
}
