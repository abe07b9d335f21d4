package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/runly/service/messaging"
)

type TestPayload struct {
	ID    string
	Count int
}

func TestQueue(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[TestPayload](config)

	ctx := context.Background()
	payload := TestPayload{ID: "test-1", Count: 1}

	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
	assert.Equal(t, 0, queue.Size())

	// The payload is shared by pointer, not copied.
	assert.Same(t, &payload, message.T())

	err = message.Ack()
	assert.NoError(t, err)

	// Double ack should error.
	err = message.Ack()
	assert.Error(t, err)
}

func TestQueue_FIFO(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		err := queue.Publish(ctx, &TestPayload{ID: fmt.Sprintf("m-%d", i), Count: i})
		assert.NoError(t, err)
	}
	for i := 0; i < 10; i++ {
		message, err := queue.Consume(ctx)
		assert.NoError(t, err)
		assert.Equal(t, i, message.T().Count)
		assert.NoError(t, message.Ack())
	}
}

func TestQueue_TryPublishFull(t *testing.T) {
	config := DefaultConfig()
	config.Capacity = 2
	queue := NewQueue[TestPayload](config)
	ctx := context.Background()

	assert.NoError(t, queue.TryPublish(ctx, &TestPayload{ID: "a"}))
	assert.NoError(t, queue.TryPublish(ctx, &TestPayload{ID: "b"}))

	err := queue.TryPublish(ctx, &TestPayload{ID: "c"})
	assert.ErrorIs(t, err, messaging.ErrFull)

	// Draining one slot makes room again.
	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, message.Ack())
	assert.NoError(t, queue.TryPublish(ctx, &TestPayload{ID: "c"}))
}

func TestQueue_PublishBlocksAtCapacity(t *testing.T) {
	config := DefaultConfig()
	config.Capacity = 1
	queue := NewQueue[TestPayload](config)
	ctx := context.Background()

	assert.NoError(t, queue.Publish(ctx, &TestPayload{ID: "a"}))

	released := make(chan struct{})
	go func() {
		// Blocks until the consumer below frees the slot.
		_ = queue.Publish(ctx, &TestPayload{ID: "b"})
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("publish should have blocked on a full queue")
	case <-time.After(30 * time.Millisecond):
	}

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, message.Ack())

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("publish never unblocked")
	}
}

func TestQueue_NackRequeues(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 1
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[TestPayload](config)
	ctx := context.Background()

	assert.NoError(t, queue.Publish(ctx, &TestPayload{ID: "retry"}))

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, message.Nack(fmt.Errorf("transient")))

	// The message comes back after the retry delay.
	ctxWait, cancelFn := context.WithTimeout(ctx, time.Second)
	defer cancelFn()
	message, err = queue.Consume(ctxWait)
	assert.NoError(t, err)
	assert.Equal(t, "retry", message.T().ID)

	// Retries are exhausted now; the message lands on the dead set.
	assert.NoError(t, message.Nack(fmt.Errorf("transient")))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, 1, queue.DeadSize())
}

func TestQueue_ContextCancellation(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())

	ctx, cancelFn := context.WithCancel(context.Background())
	cancelFn()

	err := queue.Publish(ctx, &TestPayload{ID: "test"})
	assert.Error(t, err)

	ctxWithTimeout, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	_, err = queue.Consume(ctxWithTimeout)
	assert.Error(t, err)

	// The queue stays usable after a cancelled context.
	background := context.Background()
	assert.NoError(t, queue.Publish(background, &TestPayload{ID: "test"}))
	message, err := queue.Consume(background)
	assert.NoError(t, err)
	assert.NotNil(t, message)
}
