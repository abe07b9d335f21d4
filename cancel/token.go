package cancel

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrCancelled signals cooperative cancellation requested by a caller.
	ErrCancelled = errors.New("task cancelled")

	// ErrDeadlineExceeded signals cancellation triggered by a task deadline.
	ErrDeadlineExceeded = errors.New("task deadline exceeded")
)

// IsCancelled reports whether err originates from a cancellation source,
// either explicit or deadline driven.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, ErrDeadlineExceeded)
}

// Source owns a cancellation signal. It is created per task by the pool and
// fans the signal out to the worker and any combinator holding the future.
type Source struct {
	mu    sync.Mutex
	done  chan struct{}
	err   error
	timer *time.Timer
}

// NewSource returns a source that cancels only on an explicit Cancel call.
func NewSource() *Source {
	return &Source{done: make(chan struct{})}
}

// WithTimeout returns a source that cancels itself with ErrDeadlineExceeded
// once d elapses. An explicit Cancel and the deadline compose; whichever
// fires first wins.
func WithTimeout(d time.Duration) *Source {
	s := NewSource()
	s.timer = time.AfterFunc(d, func() {
		s.Cancel(ErrDeadlineExceeded)
	})
	return s
}

// Cancel marks the source cancelled with the supplied reason. A nil reason
// defaults to ErrCancelled. Only the first call takes effect; it reports
// whether this call was the one that cancelled the source.
func (s *Source) Cancel(reason error) bool {
	if reason == nil {
		reason = ErrCancelled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false
	}
	s.err = reason
	if s.timer != nil {
		s.timer.Stop()
	}
	close(s.done)
	return true
}

// Token returns the read-only view handed to workers and task handlers.
func (s *Source) Token() *Token { return &Token{source: s} }

// Token is a cooperative cancellation signal. Handlers check it at
// checkpoints; cancellation never interrupts a running handler mid-step.
type Token struct {
	source *Source
}

// Done returns a channel closed once the token is cancelled. A nil token
// never cancels.
func (t *Token) Done() <-chan struct{} {
	if t == nil || t.source == nil {
		return nil
	}
	return t.source.done
}

// Cancelled reports whether the token has been cancelled.
func (t *Token) Cancelled() bool {
	return t.Err() != nil
}

// Err returns nil while the token is live and the cancellation reason after.
func (t *Token) Err() error {
	if t == nil || t.source == nil {
		return nil
	}
	t.source.mu.Lock()
	defer t.source.mu.Unlock()
	return t.source.err
}

// Context derives a context cancelled when the token is. The returned stop
// function releases the bridge goroutine and must be called once the handler
// returns.
func (t *Token) Context(parent context.Context) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	if t == nil || t.source == nil {
		return parent, func() {}
	}
	ctx, cancelFn := context.WithCancel(parent)
	stopped := make(chan struct{})
	go func() {
		select {
		case <-t.Done():
			cancelFn()
		case <-ctx.Done():
		case <-stopped:
		}
	}()
	return ctx, func() {
		close(stopped)
		cancelFn()
	}
}
