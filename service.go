package runly

import (
	"context"

	"github.com/viant/runly/model/task"
	"github.com/viant/runly/progress"
	"github.com/viant/runly/runtime/execution"
	"github.com/viant/runly/service/combinator"
	"github.com/viant/runly/service/dao"
	"github.com/viant/runly/service/event"
	"github.com/viant/runly/service/messaging"
	"github.com/viant/runly/service/pool"
)

// Service is the top-level façade over the worker pool and the future
// combinators.
type Service struct {
	config       *Config
	queue        messaging.Queue[execution.Execution]
	executionDao dao.Service[string, execution.Execution]
	publisher    *event.Publisher[execution.Settlement]
	tracker      *progress.Progress
	pool         *pool.Service
}

// New creates a service with the supplied options.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	poolOptions := []pool.Option{
		pool.WithWorkers(s.config.Pool.Workers),
		pool.WithQueueCapacity(s.config.Pool.QueueCapacity),
		pool.WithDefaultTimeout(s.config.Pool.DefaultTimeout()),
	}
	if s.queue != nil {
		poolOptions = append(poolOptions, pool.WithQueue(s.queue))
	}
	if s.executionDao != nil {
		poolOptions = append(poolOptions, pool.WithExecutionDAO(s.executionDao))
	}
	if s.publisher != nil {
		poolOptions = append(poolOptions, pool.WithEventPublisher(s.publisher))
	}
	if s.tracker != nil {
		poolOptions = append(poolOptions, pool.WithProgress(s.tracker))
	}
	var err error
	if s.pool, err = pool.New(poolOptions...); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromConfig creates a service from a serialisable configuration; options
// may still override individual collaborators.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return New(append([]Option{WithConfig(config)}, options...)...)
}

// Pool returns the underlying worker pool.
func (s *Service) Pool() *pool.Service { return s.pool }

// Start launches the pool workers.
func (s *Service) Start(ctx context.Context) error {
	return s.pool.Start(ctx)
}

// Submit enqueues a task and returns its future; it blocks while the queue
// is at capacity unless a reject-mode policy travels in ctx.
func (s *Service) Submit(ctx context.Context, t *task.Task) (*execution.Future, error) {
	return s.pool.Submit(ctx, t)
}

// TrySubmit enqueues a task without blocking.
func (s *Service) TrySubmit(ctx context.Context, t *task.Task) (*execution.Future, error) {
	return s.pool.TrySubmit(ctx, t)
}

// Cancel requests cancellation of a submitted task.
func (s *Service) Cancel(ctx context.Context, taskID string) bool {
	return s.pool.Cancel(ctx, taskID)
}

// Execution returns the settlement record for a submitted task.
func (s *Service) Execution(ctx context.Context, taskID string) (*execution.Execution, error) {
	return s.pool.Execution(ctx, taskID)
}

// Progress returns the pool's counter tracker.
func (s *Service) Progress() *progress.Progress {
	return s.pool.Progress()
}

// Shutdown stops the pool; with drain true it waits for queued and running
// tasks to settle.
func (s *Service) Shutdown(ctx context.Context, drain bool) error {
	return s.pool.Shutdown(ctx, drain)
}

// SubmitAll submits every task and waits until all fulfil, returning the
// values in submission order; the first failure cancels the rest.
func (s *Service) SubmitAll(ctx context.Context, tasks ...*task.Task) ([]interface{}, error) {
	futures, err := s.submitAll(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return combinator.All(ctx, futures)
}

// SubmitAllSettled submits every task and waits until all settle, returning
// the settlements in submission order.
func (s *Service) SubmitAllSettled(ctx context.Context, tasks ...*task.Task) ([]*execution.Settlement, error) {
	futures, err := s.submitAll(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return combinator.AllSettled(ctx, futures)
}

// SubmitRace submits every task and returns the first settlement, cancelling
// the rest.
func (s *Service) SubmitRace(ctx context.Context, tasks ...*task.Task) (*execution.Settlement, error) {
	futures, err := s.submitAll(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return combinator.Race(ctx, futures)
}

// SubmitAny submits every task and returns the value of the first to fulfil;
// when none does, it returns a *combinator.AggregateError.
func (s *Service) SubmitAny(ctx context.Context, tasks ...*task.Task) (interface{}, error) {
	futures, err := s.submitAll(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return combinator.Any(ctx, futures)
}

// submitAll submits tasks in order; on a submission failure the already
// submitted futures are cancelled.
func (s *Service) submitAll(ctx context.Context, tasks []*task.Task) ([]*execution.Future, error) {
	futures := make([]*execution.Future, 0, len(tasks))
	for _, t := range tasks {
		future, err := s.pool.Submit(ctx, t)
		if err != nil {
			for _, submitted := range futures {
				submitted.Cancel()
			}
			return nil, err
		}
		futures = append(futures, future)
	}
	return futures, nil
}
