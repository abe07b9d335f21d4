package runly

import (
	"time"

	"github.com/viant/runly/progress"
	"github.com/viant/runly/runtime/execution"
	"github.com/viant/runly/service/dao"
	"github.com/viant/runly/service/event"
	"github.com/viant/runly/service/messaging"
	"github.com/viant/runly/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service.
type Option func(s *Service)

// WithConfig sets the whole configuration at once.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithWorkers sets the number of task workers.
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.Pool.Workers = count
	}
}

// WithQueueCapacity bounds the task queue; zero means submissions block
// until a worker is free.
func WithQueueCapacity(capacity int) Option {
	return func(s *Service) {
		s.config.Pool.QueueCapacity = capacity
	}
}

// WithDefaultTimeout sets the deadline applied to tasks submitted without
// their own timeout.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.config.Pool.DefaultTimeoutMs = int(timeout.Milliseconds())
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

// WithProgress sets the counter tracker shared with the pool.
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The function is safe to call multiple times – the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP, Jaeger or Zipkin. The first successful
// initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
