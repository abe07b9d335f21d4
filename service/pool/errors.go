package pool

import "errors"

var (
	// ErrQueueFull is returned by non-blocking submission when the bounded
	// queue is at capacity. It is a synchronous backpressure signal, never
	// delivered as a settlement.
	ErrQueueFull = errors.New("task queue is full")

	// ErrShutdown is returned by submission after Shutdown; the task is
	// rejected immediately and never queued.
	ErrShutdown = errors.New("pool is shut down")
)
