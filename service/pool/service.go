package pool

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/runly/cancel"
	"github.com/viant/runly/internal/idgen"
	"github.com/viant/runly/model/task"
	"github.com/viant/runly/progress"
	"github.com/viant/runly/runtime/execution"
	"github.com/viant/runly/service/dao"
	"github.com/viant/runly/service/dao/store"
	"github.com/viant/runly/service/event"
	"github.com/viant/runly/service/messaging"
	"github.com/viant/runly/service/messaging/memory"
	"github.com/viant/runly/service/worker"
	"github.com/viant/runly/tracing"
)

// Config represents pool configuration.
type Config struct {
	// WorkerCount is the number of workers executing tasks; at least 1.
	WorkerCount int

	// QueueCapacity bounds the task queue; 0 means pure backpressure –
	// submissions block until a worker frees up.
	QueueCapacity int

	// DefaultTimeout applies to tasks submitted without their own deadline;
	// zero disables the default deadline.
	DefaultTimeout time.Duration
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		WorkerCount:   5,
		QueueCapacity: 100,
	}
}

// Service owns a fixed set of workers and one bounded FIFO task queue.
// Queued tasks are dispatched in submission order to whichever worker becomes
// idle first.
type Service struct {
	config       Config
	queue        messaging.Queue[execution.Execution]
	executionDao dao.Service[string, execution.Execution]
	publisher    *event.Publisher[execution.Settlement]
	tracker      *progress.Progress

	workers   []*worker.Worker
	cancelFns []context.CancelFunc
	workerWg  sync.WaitGroup
	inflight  sync.WaitGroup
	started   atomic.Bool
	shutdown  atomic.Bool
}

// New creates a pool service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.config.WorkerCount < 1 {
		return nil, fmt.Errorf("workerCount must be >= 1, had: %d", s.config.WorkerCount)
	}
	if s.config.QueueCapacity < 0 {
		return nil, fmt.Errorf("queueCapacity must be >= 0, had: %d", s.config.QueueCapacity)
	}
	if s.queue == nil {
		queueConfig := memory.DefaultConfig()
		queueConfig.Capacity = s.config.QueueCapacity
		s.queue = memory.NewQueue[execution.Execution](queueConfig)
	}
	if s.executionDao == nil {
		s.executionDao = store.NewMemoryStore[string, execution.Execution](
			func(e *execution.Execution) string { return e.ID },
		).WithMatcher(matchExecution)
	}
	if s.tracker == nil {
		s.tracker = progress.New()
	}
	return s, nil
}

// matchExecution evaluates list criteria against an execution record.
func matchExecution(e *execution.Execution, parameter *dao.Parameter) bool {
	switch parameter.Name {
	case "terminal":
		want, _ := parameter.Value.(bool)
		return e.GetState().IsTerminal() == want
	case "state":
		want, _ := parameter.Value.(execution.State)
		return e.GetState() == want
	}
	return true
}

// Start launches the worker goroutines. It must be called once before any
// submission is dispatched.
func (s *Service) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("pool already started")
	}
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancelFn := context.WithCancel(ctx)
		w := worker.New(i)
		s.workers = append(s.workers, w)
		s.cancelFns = append(s.cancelFns, cancelFn)
		s.workerWg.Add(1)
		go s.run(workerCtx, w)
	}
	return nil
}

// run is one worker's consumption loop over the shared queue.
func (s *Service) run(ctx context.Context, w *worker.Worker) {
	defer s.workerWg.Done()
	for {
		msg, err := s.queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			// Transient queue error; back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			// Polling queues report an empty backlog as a nil message.
			select {
			case <-ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}
		s.process(ctx, w, msg)
	}
}

// process executes one dequeued task on the supplied worker.
func (s *Service) process(ctx context.Context, w *worker.Worker, msg messaging.Message[execution.Execution]) {
	exec := msg.T()
	// Queues that round-trip the payload by value (e.g. the filesystem queue)
	// deliver a copy stripped of the handler, token and future; the stored
	// record is the authoritative one.
	if exec.Future() == nil {
		stored, err := s.executionDao.Load(ctx, exec.ID)
		if err != nil || stored == nil {
			log.Printf("worker %d: no execution record for dequeued task %v: %v", w.ID(), exec.ID, err)
			if err := msg.Ack(); err != nil {
				log.Printf("worker %d: failed to ack task %v: %v", w.ID(), exec.ID, err)
			}
			return
		}
		exec = stored
	}
	s.tracker.Add(progress.CounterQueued, -1)

	running := exec.GetState() == execution.StatePending
	if running {
		s.tracker.Add(progress.CounterRunning, 1)
	}

	execCtx, span := tracing.StartSpan(ctx, fmt.Sprintf("pool.execute %s", exec.Name), "CONSUMER")
	settlement := w.Run(execCtx, exec)
	var settleErr error
	if settlement != nil {
		settleErr = settlement.Err
	}
	tracing.EndSpan(span.WithAttributes(map[string]string{"task.id": exec.ID}), settleErr)

	if running {
		s.tracker.Add(progress.CounterRunning, -1)
	}
	if err := msg.Ack(); err != nil {
		log.Printf("worker %d: failed to ack task %v: %v", w.ID(), exec.ID, err)
	}
}

// Submit enqueues a task and returns its future. Submission blocks while the
// queue is at capacity unless a reject-mode policy travels in ctx. The task
// is assigned a fresh ID; IDs are never reused.
func (s *Service) Submit(ctx context.Context, t *task.Task) (*execution.Future, error) {
	return s.submit(ctx, t, s.rejects(ctx))
}

// TrySubmit enqueues a task without blocking; it fails with ErrQueueFull
// when the queue is at capacity.
func (s *Service) TrySubmit(ctx context.Context, t *task.Task) (*execution.Future, error) {
	return s.submit(ctx, t, true)
}

func (s *Service) submit(ctx context.Context, t *task.Task, nonBlocking bool) (future *execution.Future, err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("pool.submit %s", t.Name), "PRODUCER")
	defer func() { tracing.EndSpan(span, err) }()

	if s.shutdown.Load() {
		return nil, ErrShutdown
	}
	if t.Handler == nil {
		return nil, fmt.Errorf("task %q has no handler", t.Name)
	}

	exec := execution.New(idgen.New(), t, s.newSource(ctx, t))
	t.ID = exec.ID
	span.WithAttributes(map[string]string{"task.id": exec.ID})

	if err = s.executionDao.Save(ctx, exec); err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}
	// Counted before publishing so a drain that starts mid-submission still
	// waits for this task.
	s.inflight.Add(1)
	if nonBlocking {
		err = s.queue.TryPublish(ctx, exec)
	} else {
		err = s.queue.Publish(ctx, exec)
	}
	if err != nil {
		s.inflight.Done()
		_ = s.executionDao.Delete(ctx, exec.ID)
		if errors.Is(err, messaging.ErrFull) {
			return nil, ErrQueueFull
		}
		return nil, err
	}

	s.tracker.Add(progress.CounterSubmitted, 1)
	s.tracker.Add(progress.CounterQueued, 1)
	exec.Future().OnSettle(func(settlement *execution.Settlement) {
		s.observeSettlement(exec, settlement)
	})

	// A shutdown that raced the publish may have released the workers
	// already; cancel so the execution cannot strand unsettled.
	if s.shutdown.Load() {
		exec.Cancel(ErrShutdown)
	}
	return exec.Future(), nil
}

// observeSettlement performs per-settlement bookkeeping exactly once.
func (s *Service) observeSettlement(exec *execution.Execution, settlement *execution.Settlement) {
	switch settlement.Status {
	case execution.StateFulfilled:
		s.tracker.Add(progress.CounterFulfilled, 1)
	case execution.StateRejected:
		s.tracker.Add(progress.CounterRejected, 1)
	case execution.StateCancelled:
		s.tracker.Add(progress.CounterCancelled, 1)
	}
	if s.publisher != nil {
		eventContext := &event.Context{
			TaskID:      exec.ID,
			WorkerID:    exec.Worker(),
			EventType:   string(settlement.Status),
			TimeTakenMs: int(settlement.At.Sub(exec.SubmittedAt).Milliseconds()),
		}
		// Events are best effort; a full queue drops the event rather than
		// blocking the settle path.
		if err := s.publisher.TryPublish(context.Background(), event.NewEvent(eventContext, *settlement)); err != nil {
			log.Printf("pool: dropped settlement event for %v: %v", exec.ID, err)
		}
	}
	s.inflight.Done()
}

// newSource builds the task's cancellation source, applying the effective
// deadline: explicit task timeout, then context policy, then pool default.
func (s *Service) newSource(ctx context.Context, t *task.Task) *cancel.Source {
	timeout := t.Timeout
	if timeout == 0 {
		if p := policyFrom(ctx); p != nil {
			timeout = p.Timeout()
		}
	}
	if timeout == 0 {
		timeout = s.config.DefaultTimeout
	}
	if timeout > 0 {
		return cancel.WithTimeout(timeout)
	}
	return cancel.NewSource()
}

// Cancel marks the task's cancellation token. It reports true when the task
// was pending or running at the time of the call; a task still queued is
// settled Cancelled immediately and no worker ever runs it.
func (s *Service) Cancel(ctx context.Context, taskID string) bool {
	exec, err := s.executionDao.Load(ctx, taskID)
	if err != nil || exec == nil {
		return false
	}
	return exec.Cancel(nil)
}

// Execution returns the settlement record for a submitted task.
func (s *Service) Execution(ctx context.Context, taskID string) (*execution.Execution, error) {
	return s.executionDao.Load(ctx, taskID)
}

// Progress returns the pool's counter tracker.
func (s *Service) Progress() *progress.Progress { return s.tracker }

// Workers returns the pool's worker handles for introspection.
func (s *Service) Workers() []*worker.Worker { return s.workers }

// Shutdown stops the pool. With drain true it waits for all in-flight and
// queued tasks to settle; otherwise every unsettled task is cancelled first
// and workers are released once their current task settles. Submissions
// after Shutdown fail with ErrShutdown.
func (s *Service) Shutdown(ctx context.Context, drain bool) error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	if !drain {
		unsettled, err := s.executionDao.List(ctx, dao.NewParameter("terminal", false))
		if err == nil {
			for _, exec := range unsettled {
				exec.Cancel(nil)
			}
		}
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	for _, cancelFn := range s.cancelFns {
		cancelFn()
	}
	s.workerWg.Wait()
	return nil
}
