// Package cancel provides a cooperative cancellation primitive propagated
// from caller to combinator to pool to worker. A token only takes effect at
// checkpoints the running code explicitly checks; nothing is interrupted
// mid-instruction. Deadlines are expressed as sources that cancel themselves,
// composing with explicit cancellation on a first-one-wins basis.
package cancel
