package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/runly/cancel"
	"github.com/viant/runly/model/task"
	"github.com/viant/runly/runtime/execution"
)

func newExecution(handler task.Handler, payload interface{}, source *cancel.Source) *execution.Execution {
	definition := task.New("test", handler).WithPayload(payload)
	return execution.New("t1", definition, source)
}

func TestWorker_RunFulfils(t *testing.T) {
	w := New(1)
	exec := newExecution(task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			return payload.(int) * 2, nil
		}), 21, cancel.NewSource())

	settlement := w.Run(context.Background(), exec)
	assert.True(t, settlement.Fulfilled())
	assert.Equal(t, 42, settlement.Value)
	assert.Equal(t, 1, exec.Worker())
	assert.False(t, w.Busy())
	assert.Equal(t, "", w.CurrentTaskID())
}

func TestWorker_RunRejects(t *testing.T) {
	w := New(1)
	boom := errors.New("boom")
	exec := newExecution(task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			return nil, boom
		}), nil, cancel.NewSource())

	settlement := w.Run(context.Background(), exec)
	assert.True(t, settlement.Rejected())
	assert.Equal(t, boom, settlement.Err)
}

func TestWorker_PanicBecomesRejection(t *testing.T) {
	w := New(1)
	exec := newExecution(task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			panic("kaboom")
		}), nil, cancel.NewSource())

	settlement := w.Run(context.Background(), exec)
	assert.True(t, settlement.Rejected())
	assert.Contains(t, settlement.Err.Error(), "kaboom")

	// The worker stays usable for the next task.
	next := newExecution(task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			return "ok", nil
		}), nil, cancel.NewSource())
	settlement = w.Run(context.Background(), next)
	assert.True(t, settlement.Fulfilled())
}

func TestWorker_PreCancelledSkipsHandler(t *testing.T) {
	w := New(1)
	executed := false
	source := cancel.NewSource()
	source.Cancel(nil)

	exec := newExecution(task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			executed = true
			return nil, nil
		}), nil, source)

	settlement := w.Run(context.Background(), exec)
	assert.True(t, settlement.Cancelled())
	assert.False(t, executed)
}

func TestWorker_SettledWhileQueued(t *testing.T) {
	w := New(1)
	executed := false
	exec := newExecution(task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			executed = true
			return nil, nil
		}), nil, cancel.NewSource())

	// Cancelled while still queued: the execution settles immediately and a
	// later dispatch is a no-op returning that settlement.
	assert.True(t, exec.Cancel(nil))
	settlement := w.Run(context.Background(), exec)
	assert.True(t, settlement.Cancelled())
	assert.False(t, executed)
	assert.Equal(t, -1, exec.Worker())
}

func TestWorker_StepCheckpointCancellation(t *testing.T) {
	w := New(1)
	source := cancel.NewSource()
	var reached []int

	steps := task.Steps{
		func(ctx context.Context, input interface{}) (interface{}, error) {
			reached = append(reached, 1)
			source.Cancel(nil)
			return input, nil
		},
		func(ctx context.Context, input interface{}) (interface{}, error) {
			reached = append(reached, 2)
			return input, nil
		},
	}
	exec := newExecution(steps, nil, source)

	settlement := w.Run(context.Background(), exec)
	assert.True(t, settlement.Cancelled())
	assert.Equal(t, []int{1}, reached)
}

func TestWorker_StepsRunToCompletion(t *testing.T) {
	w := New(1)
	steps := task.Steps{
		func(ctx context.Context, input interface{}) (interface{}, error) {
			return input.(int) + 1, nil
		},
		func(ctx context.Context, input interface{}) (interface{}, error) {
			return input.(int) * 10, nil
		},
	}
	exec := newExecution(steps, 4, cancel.NewSource())

	settlement := w.Run(context.Background(), exec)
	assert.True(t, settlement.Fulfilled())
	assert.Equal(t, 50, settlement.Value)
}

func TestWorker_RunWhileBusyPanics(t *testing.T) {
	w := New(1)
	started := make(chan struct{})
	release := make(chan struct{})
	exec := newExecution(task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			close(started)
			<-release
			return nil, nil
		}), nil, cancel.NewSource())

	go w.Run(context.Background(), exec)
	<-started

	other := newExecution(task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			return nil, nil
		}), nil, cancel.NewSource())

	assert.Panics(t, func() {
		w.Run(context.Background(), other)
	})
	close(release)
}

func TestWorker_DeadlineCancelsHandlerContext(t *testing.T) {
	w := New(1)
	source := cancel.WithTimeout(20 * time.Millisecond)
	exec := newExecution(task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return "too slow", nil
			}
		}), nil, source)

	settlement := w.Run(context.Background(), exec)
	assert.True(t, settlement.Cancelled())
	assert.ErrorIs(t, settlement.Err, cancel.ErrDeadlineExceeded)
}
