package event

import (
	"context"
	"time"

	"github.com/viant/runly/service/messaging"
)

// Publisher fans settlement events out through a queue so that consumers
// never block the pool's settle path.
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

// NewPublisher creates a publisher over the supplied queue.
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish enqueues one event.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = time.Now()
	return p.queue.Publish(ctx, event)
}

// TryPublish enqueues one event without blocking; it fails with
// messaging.ErrFull when the queue is at capacity. Producers on a hot path
// use it so that a slow consumer costs events, never throughput.
func (p *Publisher[T]) TryPublish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = time.Now()
	return p.queue.TryPublish(ctx, event)
}

// Consume retrieves and acknowledges a single event.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
