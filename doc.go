// Package runly is a concurrent task execution core: a bounded worker pool
// with FIFO dispatch, per-task futures, cooperative cancellation and promise
// style combinators (All, AllSettled, Race, Any) over those futures.
//
// The root package is a thin façade wiring the building blocks together;
// each block (cell, cancel, worker, pool, combinator, messaging, dao) is
// usable on its own.
package runly
