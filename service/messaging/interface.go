package messaging

import (
	"context"
	"errors"
)

// ErrFull signals a bounded queue at capacity on a non-blocking publish.
var ErrFull = errors.New("queue at capacity")

// Queue represents an abstract message queue for any payload type. Consume
// order is FIFO with respect to Publish order.
type Queue[T any] interface {
	// Publish adds a new message to the queue, blocking while the queue is
	// at capacity.
	Publish(ctx context.Context, t *T) error

	// TryPublish adds a new message without blocking; it fails with ErrFull
	// when the queue is at capacity.
	TryPublish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue.
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack indicates a transient processing failure; eligible messages are
	// requeued.
	Nack(err error) error
}
