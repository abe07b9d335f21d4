// Package progress provides a lightweight tracker that keeps aggregated
// execution counters (submitted, queued, running, …) for a single pool. The
// counters live in a shared cell region so that workers update them through
// atomic operations only and callers can block on a counter reaching a value
// via cell.Value.Wait.

package progress

import (
	"time"

	"github.com/viant/runly/cell"
)

// Counter indexes into the tracker's cell region.
const (
	CounterSubmitted = iota
	CounterQueued
	CounterRunning
	CounterFulfilled
	CounterRejected
	CounterCancelled
	numCounters
)

// Snapshot is a point-in-time copy of the tracker counters.
type Snapshot struct {
	Submitted int64
	Queued    int64
	Running   int64
	Fulfilled int64
	Rejected  int64
	Cancelled int64
}

// Settled returns the number of executions holding a terminal state.
func (s Snapshot) Settled() int64 {
	return s.Fulfilled + s.Rejected + s.Cancelled
}

// Progress keeps aggregated execution counters for one pool. It is safe for
// concurrent use; every mutation goes through the underlying cells.
type Progress struct {
	region *cell.Region
}

// New allocates a tracker with its own cell region. The region shares the
// pool's lifetime.
func New() *Progress {
	return &Progress{region: cell.NewRegion(numCounters)}
}

// Add applies delta to the counter and wakes any goroutine blocked on that
// cell so it can re-evaluate its condition.
func (p *Progress) Add(counter int, delta int64) {
	if p == nil {
		return
	}
	value := p.region.At(counter)
	value.Add(delta)
	value.Notify(-1)
}

// Get returns the current value of one counter.
func (p *Progress) Get(counter int) int64 {
	if p == nil {
		return 0
	}
	return p.region.At(counter).Load()
}

// Snapshot returns a copy of all counters suitable for read-only inspection.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	return Snapshot{
		Submitted: p.region.At(CounterSubmitted).Load(),
		Queued:    p.region.At(CounterQueued).Load(),
		Running:   p.region.At(CounterRunning).Load(),
		Fulfilled: p.region.At(CounterFulfilled).Load(),
		Rejected:  p.region.At(CounterRejected).Load(),
		Cancelled: p.region.At(CounterCancelled).Load(),
	}
}

// WaitFor blocks until the counter holds expected or the timeout elapses.
func (p *Progress) WaitFor(counter int, expected int64, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	value := p.region.At(counter)
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if value.Wait(expected, remaining) == cell.StatusWoken {
			if value.Load() == expected {
				return true
			}
			continue
		}
		return value.Load() == expected
	}
}

// Region exposes the underlying cells for coordination beyond the canned
// counters.
func (p *Progress) Region() *cell.Region { return p.region }
