package execution

import (
	"context"
	"sync"
)

// Future is the caller-held, read-only handle referencing a task's eventual
// settlement. Exactly one terminal settlement is delivered per future.
type Future struct {
	exec *Execution

	mu         sync.Mutex
	settlement *Settlement
	observers  []func(*Settlement)
	done       chan struct{}
}

func newFuture(exec *Execution) *Future {
	return &Future{
		exec: exec,
		done: make(chan struct{}),
	}
}

// TaskID returns the identifier of the underlying task.
func (f *Future) TaskID() string { return f.exec.ID }

// Done returns a channel closed once the execution settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Settlement returns the outcome, or nil while the execution is pending or
// running.
func (f *Future) Settlement() *Settlement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settlement
}

// Wait blocks until the execution settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Settlement, error) {
	select {
	case <-f.done:
		return f.Settlement(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel requests cancellation of the underlying execution. It reports true
// when the execution was still pending or running at the time of the call.
func (f *Future) Cancel() bool {
	return f.exec.Cancel(nil)
}

// OnSettle registers an observer invoked with the settlement. Observers on a
// settled future fire synchronously; otherwise they fire in registration
// order on the goroutine performing the settlement, so a set of futures
// sharing one sink observes settlements in the order they actually occur.
func (f *Future) OnSettle(fn func(*Settlement)) {
	f.mu.Lock()
	if f.settlement != nil {
		settlement := f.settlement
		f.mu.Unlock()
		fn(settlement)
		return
	}
	f.observers = append(f.observers, fn)
	f.mu.Unlock()
}

// settle delivers the terminal outcome exactly once.
func (f *Future) settle(settlement *Settlement) {
	f.mu.Lock()
	if f.settlement != nil {
		f.mu.Unlock()
		return
	}
	f.settlement = settlement
	observers := f.observers
	f.observers = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range observers {
		fn(settlement)
	}
}
