package execution

// State represents the current state of a task execution.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateFulfilled State = "fulfilled"
	StateRejected  State = "rejected"
	StateCancelled State = "cancelled"
)

// IsTerminal reports whether the state is final; no transition leaves a
// terminal state.
func (s State) IsTerminal() bool {
	switch s {
	case StateFulfilled, StateRejected, StateCancelled:
		return true
	}
	return false
}
