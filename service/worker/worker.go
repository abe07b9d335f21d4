package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/viant/runly/cancel"
	"github.com/viant/runly/model/task"
	"github.com/viant/runly/runtime/execution"
)

// Worker executes one task at a time and reports a settlement per run. It
// owns no shared state beyond what each execution explicitly carries.
type Worker struct {
	id   int
	busy atomic.Bool

	mu      sync.Mutex
	current string
}

// New creates a worker with a pool-stable identifier.
func New(id int) *Worker {
	return &Worker{id: id}
}

// ID returns the worker identifier, stable for the pool's lifetime.
func (w *Worker) ID() int { return w.id }

// Busy reports whether the worker is currently executing a task.
func (w *Worker) Busy() bool { return w.busy.Load() }

// CurrentTaskID returns the ID of the task being executed, or empty.
func (w *Worker) CurrentTaskID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run executes one task and returns its settlement. Calling Run while the
// worker is already running is a programming error and panics. A fault
// raised by the handler never terminates the worker; it is converted into a
// Rejected settlement and the worker stays usable for the next task.
func (w *Worker) Run(ctx context.Context, exec *execution.Execution) *execution.Settlement {
	if !w.busy.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("worker %d: Run called while already running", w.id))
	}
	defer func() {
		w.setCurrent("")
		w.busy.Store(false)
	}()

	// An execution settled while queued never touches the handler.
	if !exec.Begin() {
		return exec.Future().Settlement()
	}
	exec.AssignWorker(w.id)
	w.setCurrent(exec.ID)

	token := exec.Token()
	if token.Cancelled() {
		return exec.CancelRunning(token.Err())
	}

	runCtx, stop := token.Context(ctx)
	defer stop()

	value, err := w.execute(runCtx, exec, token)
	if err != nil {
		if cancel.IsCancelled(err) || (token.Cancelled() && errors.Is(err, context.Canceled)) {
			return exec.CancelRunning(token.Err())
		}
		return exec.Reject(err)
	}
	return exec.Fulfill(value)
}

// execute runs the handler, converting panics into errors. Step handlers get
// a cancellation checkpoint between consecutive steps; a handler that never
// yields runs to completion even when cancelled.
func (w *Worker) execute(ctx context.Context, exec *execution.Execution, token *cancel.Token) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task fault: %v", r)
		}
	}()

	handler := exec.Handler()
	if handler == nil {
		return nil, fmt.Errorf("task %v has no handler", exec.ID)
	}
	if steps, ok := handler.(task.Steps); ok {
		input := exec.Payload
		for _, step := range steps {
			if cErr := token.Err(); cErr != nil {
				return nil, cErr
			}
			if input, err = step(ctx, input); err != nil {
				return nil, err
			}
		}
		return input, nil
	}
	return handler.Execute(ctx, exec.Payload)
}

func (w *Worker) setCurrent(taskID string) {
	w.mu.Lock()
	w.current = taskID
	w.mu.Unlock()
}
