package execution

import (
	"sync"
	"time"

	"github.com/viant/runly/cancel"
	"github.com/viant/runly/internal/clock"
	"github.com/viant/runly/model/task"
)

// Execution is the mutable settlement record of one submitted task. The
// submitting caller owns the task definition until submission; afterwards the
// pool exclusively owns every state mutation and the caller holds only the
// read-only Future.
type Execution struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Payload     interface{} `json:"payload,omitempty"`
	State       State       `json:"state"`
	Output      interface{} `json:"output,omitempty"`
	Error       string      `json:"error,omitempty"`
	WorkerID    int         `json:"workerID"`
	SubmittedAt time.Time   `json:"submittedAt"`
	StartedAt   *time.Time  `json:"startedAt,omitempty"`
	SettledAt   *time.Time  `json:"settledAt,omitempty"`

	handler task.Handler
	source  *cancel.Source
	future  *Future
	mux     sync.Mutex
}

// New creates a pending execution for the supplied task definition.
func New(id string, definition *task.Task, source *cancel.Source) *Execution {
	e := &Execution{
		ID:          id,
		Name:        definition.Name,
		Payload:     definition.Payload,
		State:       StatePending,
		WorkerID:    -1,
		SubmittedAt: clock.Now(),
		handler:     definition.Handler,
		source:      source,
	}
	e.future = newFuture(e)
	return e
}

// Handler returns the task's execution capability.
func (e *Execution) Handler() task.Handler { return e.handler }

// Token returns the execution's cancellation token.
func (e *Execution) Token() *cancel.Token {
	if e.source == nil {
		return nil
	}
	return e.source.Token()
}

// Future returns the caller-held handle for this execution.
func (e *Execution) Future() *Future { return e.future }

// AssignWorker records the worker executing this task.
func (e *Execution) AssignWorker(id int) {
	e.mux.Lock()
	e.WorkerID = id
	e.mux.Unlock()
}

// Worker returns the ID of the worker that ran the task, -1 while no worker
// has picked it up.
func (e *Execution) Worker() int {
	e.mux.Lock()
	defer e.mux.Unlock()
	return e.WorkerID
}

// GetState returns the current state.
func (e *Execution) GetState() State {
	e.mux.Lock()
	defer e.mux.Unlock()
	return e.State
}

// Begin transitions Pending to Running. It reports false when the execution
// was cancelled or settled while queued, in which case no worker may run it.
func (e *Execution) Begin() bool {
	e.mux.Lock()
	defer e.mux.Unlock()
	if e.State != StatePending {
		return false
	}
	now := clock.Now()
	e.StartedAt = &now
	e.State = StateRunning
	return true
}

// Fulfill settles the execution with a success value.
func (e *Execution) Fulfill(value interface{}) *Settlement {
	return e.settle(StateFulfilled, value, nil)
}

// Reject settles the execution with a task-raised failure.
func (e *Execution) Reject(err error) *Settlement {
	return e.settle(StateRejected, nil, err)
}

// CancelRunning settles a running execution as cancelled; workers call it
// once a checkpoint observes the token.
func (e *Execution) CancelRunning(reason error) *Settlement {
	if reason == nil {
		reason = cancel.ErrCancelled
	}
	return e.settle(StateCancelled, nil, reason)
}

// Cancel marks the token and, when the execution is still queued, settles it
// as cancelled so that no worker ever picks it up. It reports true when the
// execution was pending or running at the time of the call.
func (e *Execution) Cancel(reason error) bool {
	if reason == nil {
		reason = cancel.ErrCancelled
	}
	e.mux.Lock()
	state := e.State
	e.mux.Unlock()
	if state.IsTerminal() {
		return false
	}
	if e.source != nil {
		e.source.Cancel(reason)
	}
	// A queued execution settles right away; a running one settles at the
	// worker's next checkpoint.
	e.settleFrom(StatePending, StateCancelled, nil, reason)
	return true
}

// settle performs the terminal transition exactly once. A second settlement
// attempt is a no-op returning nil; result and error are populated only here.
func (e *Execution) settle(state State, value interface{}, err error) *Settlement {
	return e.settleFrom("", state, value, err)
}

// settleFrom settles only when the current state matches from (any
// non-terminal state when from is empty).
func (e *Execution) settleFrom(from, state State, value interface{}, err error) *Settlement {
	e.mux.Lock()
	if e.State.IsTerminal() || (from != "" && e.State != from) {
		e.mux.Unlock()
		return nil
	}
	now := clock.Now()
	e.SettledAt = &now
	e.State = state
	e.Output = value
	if err != nil {
		e.Error = err.Error()
	}
	settlement := &Settlement{
		TaskID: e.ID,
		Status: state,
		Value:  value,
		Err:    err,
		At:     now,
	}
	e.mux.Unlock()

	e.future.settle(settlement)
	return settlement
}

// Settlement is the final, immutable outcome of one execution. Exactly one
// settlement is produced per execution.
type Settlement struct {
	TaskID string      `json:"taskId"`
	Status State       `json:"status"`
	Value  interface{} `json:"value,omitempty"`
	Err    error       `json:"-"`
	At     time.Time   `json:"at"`
}

// Fulfilled reports whether the settlement carries a success value.
func (s *Settlement) Fulfilled() bool { return s.Status == StateFulfilled }

// Rejected reports whether the settlement carries a task-raised failure.
func (s *Settlement) Rejected() bool { return s.Status == StateRejected }

// Cancelled reports whether the settlement stems from cancellation.
func (s *Settlement) Cancelled() bool { return s.Status == StateCancelled }
