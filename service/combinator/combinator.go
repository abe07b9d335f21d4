// Package combinator composes multiple task futures into a single outcome:
// All, AllSettled, Race and Any mirror the classic promise combinators over
// pool futures. Every combinator observes one ordered settlement stream, so
// ties between simultaneously settling inputs resolve to whichever settlement
// was delivered first.
package combinator

import (
	"context"
	"fmt"

	"github.com/viant/runly/runtime/execution"
)

// AggregateError is returned by Any when no input fulfils. Errors holds the
// per-input failure reasons in settlement order.
type AggregateError struct {
	Errors []error
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	return fmt.Sprintf("all %d task(s) failed", len(e.Errors))
}

// settled pairs a settlement with the input position of its future.
type settled struct {
	index      int
	settlement *execution.Settlement
}

// observe registers a settlement observer on every future and returns the
// merged stream. The channel is buffered to the input size, so observers
// never block the settle path and already-settled inputs are delivered
// immediately.
func observe(futures []*execution.Future) <-chan settled {
	events := make(chan settled, len(futures))
	for i, future := range futures {
		i := i
		future.OnSettle(func(settlement *execution.Settlement) {
			events <- settled{index: i, settlement: settlement}
		})
	}
	return events
}

// cancelAll requests cancellation of every future; already-settled inputs
// ignore the request.
func cancelAll(futures []*execution.Future) {
	for _, future := range futures {
		future.Cancel()
	}
}

// All waits until every future fulfils and returns their values in input
// order. The first rejection or cancellation short-circuits: remaining
// futures are cancelled and the failure reason is returned.
func All(ctx context.Context, futures []*execution.Future) ([]interface{}, error) {
	values := make([]interface{}, len(futures))
	if len(futures) == 0 {
		return values, nil
	}
	events := observe(futures)
	for remaining := len(futures); remaining > 0; remaining-- {
		select {
		case event := <-events:
			if !event.settlement.Fulfilled() {
				cancelAll(futures)
				return nil, event.settlement.Err
			}
			values[event.index] = event.settlement.Value
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return values, nil
}

// AllSettled waits until every future settles, whatever the outcome, and
// returns the settlements in input order. It only fails when ctx expires
// first.
func AllSettled(ctx context.Context, futures []*execution.Future) ([]*execution.Settlement, error) {
	settlements := make([]*execution.Settlement, len(futures))
	if len(futures) == 0 {
		return settlements, nil
	}
	events := observe(futures)
	for remaining := len(futures); remaining > 0; remaining-- {
		select {
		case event := <-events:
			settlements[event.index] = event.settlement
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return settlements, nil
}

// Race returns the first settlement verbatim, fulfilment and failure alike,
// and cancels the remaining futures. With no inputs it blocks until ctx
// expires.
func Race(ctx context.Context, futures []*execution.Future) (*execution.Settlement, error) {
	events := observe(futures)
	select {
	case event := <-events:
		cancelAll(futures)
		return event.settlement, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Any returns the value of the first future to fulfil and cancels the rest.
// When every input fails, it returns an *AggregateError collecting the
// failure reasons in settlement order; with no inputs that aggregate is
// empty and returned immediately.
func Any(ctx context.Context, futures []*execution.Future) (interface{}, error) {
	if len(futures) == 0 {
		return nil, &AggregateError{}
	}
	events := observe(futures)
	aggregate := &AggregateError{Errors: make([]error, 0, len(futures))}
	for remaining := len(futures); remaining > 0; remaining-- {
		select {
		case event := <-events:
			if event.settlement.Fulfilled() {
				cancelAll(futures)
				return event.settlement.Value, nil
			}
			aggregate.Errors = append(aggregate.Errors, event.settlement.Err)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, aggregate
}
