package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/runly/internal/idgen"
	"github.com/viant/runly/service/messaging"
)

// Config for memory queue implementation.
type Config struct {
	// Capacity bounds the number of queued messages; zero means rendezvous
	// hand-off – every publish blocks until a consumer takes the message.
	Capacity int

	// MaxRetries limits how many times a Nack-ed message is requeued.
	MaxRetries int

	// RetryDelay is the pause before a Nack-ed message re-enters the queue.
	RetryDelay time.Duration
}

// DefaultConfig returns a standard configuration for a memory queue.
func DefaultConfig() Config {
	return Config{
		Capacity:   100,
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Message implements messaging.Message for the in-memory queue. The payload
// is shared by pointer so that the producer and consumer operate on the same
// record.
type Message[T any] struct {
	id         string
	payload    *T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

// T returns the message payload.
func (m *Message[T]) T() *T { return m.payload }

// Ack acknowledges the message as processed successfully.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	return nil
}

// Nack indicates a transient failure; the message is requeued until the
// retry budget runs out, after which it lands on the dead set.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.retryCount++

	if m.retryCount > m.queue.config.MaxRetries {
		m.queue.deadMu.Lock()
		m.queue.dead = append(m.queue.dead, m)
		m.queue.deadMu.Unlock()
		return nil
	}

	requeued := &Message[T]{
		id:         m.id,
		payload:    m.payload,
		queue:      m.queue,
		retryCount: m.retryCount,
		createdAt:  time.Now(),
	}
	go func() {
		time.Sleep(m.queue.config.RetryDelay)
		m.queue.messages <- requeued
	}()
	return nil
}

// Queue implements a bounded in-memory messaging.Queue with FIFO delivery.
type Queue[T any] struct {
	messages chan *Message[T]
	dead     []*Message[T]
	config   Config
	deadMu   sync.Mutex
}

// NewQueue creates a new in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.Capacity < 0 {
		config.Capacity = 0
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.Capacity),
		config:   config,
	}
}

// Publish adds a new item, blocking while the queue is at capacity.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	msg := q.newMessage(t)
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPublish adds a new item without blocking.
func (q *Queue[T]) TryPublish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.messages <- q.newMessage(t):
		return nil
	default:
		return messaging.ErrFull
	}
}

// Consume retrieves a single item from the queue.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of queued messages.
func (q *Queue[T]) Size() int { return len(q.messages) }

// DeadSize returns the number of messages that exhausted their retries.
func (q *Queue[T]) DeadSize() int {
	q.deadMu.Lock()
	defer q.deadMu.Unlock()
	return len(q.dead)
}

func (q *Queue[T]) newMessage(t *T) *Message[T] {
	return &Message[T]{
		id:        idgen.New(),
		payload:   t,
		queue:     q,
		createdAt: time.Now(),
	}
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
