package pool

import (
	"context"
	"time"

	"github.com/viant/runly/policy"
	"github.com/viant/runly/progress"
	"github.com/viant/runly/runtime/execution"
	"github.com/viant/runly/service/dao"
	"github.com/viant/runly/service/event"
	"github.com/viant/runly/service/messaging"
)

// Option customises a pool service.
type Option func(*Service)

// WithConfig sets the whole configuration at once.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithQueueCapacity bounds the task queue; zero means submissions block
// until a worker is free.
func WithQueueCapacity(capacity int) Option {
	return func(s *Service) {
		s.config.QueueCapacity = capacity
	}
}

// WithDefaultTimeout sets the deadline applied to tasks submitted without
// their own timeout.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.config.DefaultTimeout = timeout
	}
}

// WithQueue sets the task queue implementation.
func WithQueue(queue messaging.Queue[execution.Execution]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithExecutionDAO sets the execution store implementation.
func WithExecutionDAO(executionDao dao.Service[string, execution.Execution]) Option {
	return func(s *Service) {
		s.executionDao = executionDao
	}
}

// WithEventPublisher makes the pool publish one settlement event per task.
func WithEventPublisher(publisher *event.Publisher[execution.Settlement]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithProgress sets the counter tracker; by default the pool allocates its
// own.
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}

// policyFrom extracts the submission policy travelling in ctx.
var policyFrom = policy.FromContext

// rejects reports whether ctx carries a reject-mode submission policy.
func (s *Service) rejects(ctx context.Context) bool {
	return policyFrom(ctx).Rejects()
}
