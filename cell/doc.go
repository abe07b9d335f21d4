// Package cell provides fixed-size shared memory cells mutated exclusively
// through atomic operations, plus blocking wait/notify so that workers can
// coordinate without owning each other's state. All operations on a single
// cell are linearizable: concurrent calls observe one total order consistent
// with real-time issue order.
package cell
