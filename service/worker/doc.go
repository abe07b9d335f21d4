// Package worker hosts the per-worker execution of individual tasks: the
// pre-run cancellation check, the step-boundary checkpoints and the
// conversion of handler faults into Rejected settlements.
package worker
