package build

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker writes in-place progress lines for a running build.
// Safe for concurrent use.
type ProgressTracker struct {
	mu        sync.Mutex
	w         io.Writer
	total     int
	done      int
	interval  int
	lastMark  int
	startedAt time.Time
	running   bool
}

// NewProgressTracker returns a tracker that reports to w each time another
// interval fragments of the total have been processed. Nothing is written
// before Start is called.
func NewProgressTracker(w io.Writer, total, interval int) *ProgressTracker {
	return &ProgressTracker{
		w:        w,
		total:    total,
		interval: interval,
	}
}

// Start resets the counters and begins timing.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = time.Now()
	p.running = true
	p.done = 0
	p.lastMark = 0
}

// Update sets the number of fragments processed so far.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advance(current)
}

// Increment adds delta to the number of fragments processed so far.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advance(p.done + delta)
}

// advance moves progress to n, clamped to total, reporting once per
// interval. Callers hold the lock.
func (p *ProgressTracker) advance(n int) {
	if !p.running {
		return
	}

	if n > p.total {
		n = p.total
	}
	p.done = n

	if p.done-p.lastMark >= p.interval {
		p.report()
		p.lastMark = p.done
	}
}

// Finish forces a final report and terminates the progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.done = p.total
	p.report()
	fmt.Fprintln(p.w)
}

// Elapsed returns the time since Start. Zero before Start is called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return 0
	}
	return time.Since(p.startedAt)
}

// report rewrites the progress line in place. Callers hold the lock.
func (p *ProgressTracker) report() {
	var percent float64
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total) * 100
	}
	rate := float64(p.done) / time.Since(p.startedAt).Seconds()

	fmt.Fprintf(p.w, "\rEmbedding %d/%d fragments (%.0f%%) at %.1f/s",
		p.done, p.total, percent, rate)
}
