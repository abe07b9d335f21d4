package cell

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status is the outcome of a Wait call.
type Status string

const (
	// StatusWoken indicates the cell already held the expected value or a
	// Notify arrived before the timeout.
	StatusWoken Status = "woken"

	// StatusTimedOut indicates the timeout elapsed without a notification.
	StatusTimedOut Status = "timedOut"
)

// Value is a single shared memory cell. Every mutation goes through an
// atomic operation so that concurrent readers never observe a torn value.
// The zero value holds 0 and is ready to use.
type Value struct {
	val atomic.Int64

	mu      sync.Mutex
	waiters []chan struct{}
}

// Load returns the current value.
func (v *Value) Load() int64 { return v.val.Load() }

// Store replaces the current value.
func (v *Value) Store(n int64) { v.val.Store(n) }

// Add atomically adds delta and returns the previous value.
func (v *Value) Add(delta int64) int64 {
	return v.val.Add(delta) - delta
}

// CompareAndSwap replaces the value with new only if it currently equals
// expected. It reports whether the swap happened.
func (v *Value) CompareAndSwap(expected, new int64) bool {
	return v.val.CompareAndSwap(expected, new)
}

// Wait blocks the calling goroutine until the cell holds expected, a Notify
// arrives, or the timeout elapses. When the cell already holds expected the
// call returns StatusWoken without blocking. A zero or negative timeout never
// blocks: it returns StatusWoken when the value already matches and
// StatusTimedOut otherwise.
func (v *Value) Wait(expected int64, timeout time.Duration) Status {
	if v.val.Load() == expected {
		return StatusWoken
	}
	if timeout <= 0 {
		return StatusTimedOut
	}

	waiter := make(chan struct{})
	v.mu.Lock()
	v.waiters = append(v.waiters, waiter)
	v.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-waiter:
		return StatusWoken
	case <-timer.C:
		v.remove(waiter)
		return StatusTimedOut
	}
}

// Notify wakes up to count waiters and returns how many were woken.
// A negative count wakes all waiters.
func (v *Value) Notify(count int) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if count < 0 || count > len(v.waiters) {
		count = len(v.waiters)
	}
	for i := 0; i < count; i++ {
		close(v.waiters[i])
	}
	v.waiters = append([]chan struct{}(nil), v.waiters[count:]...)
	return count
}

// remove drops a waiter that timed out; the waiter may have been notified
// concurrently, in which case it is already gone from the slice.
func (v *Value) remove(waiter chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, w := range v.waiters {
		if w == waiter {
			v.waiters = append(v.waiters[:i], v.waiters[i+1:]...)
			return
		}
	}
}

// Region is a fixed-size block of cells shared by the workers of one pool.
// It is allocated with the pool and must not outlive it.
type Region struct {
	cells []Value
}

// NewRegion allocates a region with size cells, all holding zero.
func NewRegion(size int) *Region {
	if size < 0 {
		size = 0
	}
	return &Region{cells: make([]Value, size)}
}

// At returns the cell at index i. Indexes are not bounds-checked beyond the
// slice access itself; callers own the index layout.
func (r *Region) At(i int) *Value { return &r.cells[i] }

// Len returns the number of cells in the region.
func (r *Region) Len() int { return len(r.cells) }
