package event

import (
	"context"
	"errors"
	"log"
)

// Listener consumes events on its own goroutine and hands each one to the
// supplied handler.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancelFn  context.CancelFunc
}

// NewListener creates a stopped listener; call Start to begin consumption.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancelFn := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancelFn:  cancelFn,
	}
}

// Stop ends consumption; in-flight handler calls complete.
func (l *Listener[T]) Stop() {
	l.cancelFn()
}

// Start begins consuming events until Stop is called.
func (l *Listener[T]) Start() {
	go func() {
		for {
			event, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("event listener: failed to consume: %v", err)
				continue
			}
			if event == nil {
				continue
			}
			l.handler(event)
		}
	}()
}
