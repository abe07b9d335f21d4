// Package pool hosts the bounded worker pool: a fixed set of workers
// consuming one FIFO task queue, per-task futures, cooperative cancellation
// and drain-aware shutdown. The pool never retries a task on its own; retry
// policy belongs to the caller.
package pool
