// Package execution holds the mutable settlement state of submitted tasks:
// the Pending → Running → {Fulfilled | Rejected | Cancelled} state machine,
// the immutable Settlement produced exactly once per task, and the Future
// handle through which callers and combinators observe it.
package execution
