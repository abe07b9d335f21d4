package task

import (
	"context"
	"time"
)

type (
	// Task describes one unit of work submitted to a pool. The definition is
	// immutable once submitted; all mutable settlement state lives in the
	// pool-owned execution record.
	Task struct {
		ID      string        `json:"id,omitempty" yaml:"id,omitempty"`
		Name    string        `json:"name,omitempty" yaml:"name,omitempty"`
		Payload interface{}   `json:"payload,omitempty" yaml:"payload,omitempty"`
		Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
		Handler Handler       `json:"-" yaml:"-"`
	}

	// Handler is the single execution capability of a task. It receives a
	// context cancelled when the task's token fires, so long-running handlers
	// can honour cancellation between their own await points.
	Handler interface {
		Execute(ctx context.Context, payload interface{}) (interface{}, error)
	}

	// HandlerFunc adapts a plain function to Handler.
	HandlerFunc func(ctx context.Context, payload interface{}) (interface{}, error)

	// Step is one stage of a multi-step task. The value returned by a step is
	// passed as input to the next one.
	Step func(ctx context.Context, input interface{}) (interface{}, error)

	// Steps is a task handler structured as a sequence of steps. Workers
	// check the cancellation token between steps, making each boundary a
	// cancellation checkpoint.
	Steps []Step
)

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, payload interface{}) (interface{}, error) {
	return f(ctx, payload)
}

// Execute runs all steps in order, feeding each step's output to the next.
// Step-boundary cancellation checks belong to the worker, which unpacks
// Steps instead of calling Execute.
func (s Steps) Execute(ctx context.Context, payload interface{}) (interface{}, error) {
	input := payload
	for _, step := range s {
		output, err := step(ctx, input)
		if err != nil {
			return nil, err
		}
		input = output
	}
	return input, nil
}

// New creates a task with the supplied name and handler.
func New(name string, handler Handler) *Task {
	return &Task{Name: name, Handler: handler}
}

// WithPayload sets the opaque task input.
func (t *Task) WithPayload(payload interface{}) *Task {
	t.Payload = payload
	return t
}

// WithTimeout sets a per-task deadline; zero falls back to the pool default.
func (t *Task) WithTimeout(timeout time.Duration) *Task {
	t.Timeout = timeout
	return t
}
