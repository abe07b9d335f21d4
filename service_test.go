package runly

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/runly/model/task"
	"github.com/viant/runly/progress"
	"github.com/viant/runly/runtime/execution"
	"github.com/viant/runly/service/combinator"
)

func TestService_EndToEnd(t *testing.T) {
	s, err := New(WithWorkers(3), WithQueueCapacity(16))
	assert.NoError(t, err)
	ctx := context.Background()
	assert.NoError(t, s.Start(ctx))
	defer s.Shutdown(ctx, true)

	square := task.HandlerFunc(func(ctx context.Context, payload interface{}) (interface{}, error) {
		n := payload.(int)
		return n * n, nil
	})

	future, err := s.Submit(ctx, task.New("square", square).WithPayload(7))
	assert.NoError(t, err)
	settlement, err := future.Wait(ctx)
	assert.NoError(t, err)
	assert.True(t, settlement.Fulfilled())
	assert.Equal(t, 49, settlement.Value)

	record, err := s.Execution(ctx, future.TaskID())
	assert.NoError(t, err)
	assert.Equal(t, execution.StateFulfilled, record.GetState())
	assert.Equal(t, int64(1), s.Progress().Get(progress.CounterSubmitted))
}

func TestService_SubmitAll(t *testing.T) {
	s, err := New(WithWorkers(2))
	assert.NoError(t, err)
	ctx := context.Background()
	assert.NoError(t, s.Start(ctx))
	defer s.Shutdown(ctx, true)

	double := task.HandlerFunc(func(ctx context.Context, payload interface{}) (interface{}, error) {
		return payload.(int) * 2, nil
	})
	values, err := s.SubmitAll(ctx,
		task.New("a", double).WithPayload(1),
		task.New("b", double).WithPayload(2),
		task.New("c", double).WithPayload(3),
	)
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{2, 4, 6}, values)
}

func TestService_SubmitAllSettled(t *testing.T) {
	s, err := New(WithWorkers(2))
	assert.NoError(t, err)
	ctx := context.Background()
	assert.NoError(t, s.Start(ctx))
	defer s.Shutdown(ctx, true)

	boom := errors.New("boom")
	settlements, err := s.SubmitAllSettled(ctx,
		task.New("ok", task.HandlerFunc(func(ctx context.Context, payload interface{}) (interface{}, error) {
			return "fine", nil
		})),
		task.New("bad", task.HandlerFunc(func(ctx context.Context, payload interface{}) (interface{}, error) {
			return nil, boom
		})),
	)
	assert.NoError(t, err)
	if !assert.Len(t, settlements, 2) {
		return
	}
	assert.True(t, settlements[0].Fulfilled())
	assert.Equal(t, "fine", settlements[0].Value)
	assert.True(t, settlements[1].Rejected())
	assert.Equal(t, boom, settlements[1].Err)
}

func TestService_SubmitRace(t *testing.T) {
	s, err := New(WithWorkers(2))
	assert.NoError(t, err)
	ctx := context.Background()
	assert.NoError(t, s.Start(ctx))
	defer s.Shutdown(ctx, true)

	fast := task.HandlerFunc(func(ctx context.Context, payload interface{}) (interface{}, error) {
		return "fast", nil
	})
	slow := task.HandlerFunc(func(ctx context.Context, payload interface{}) (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return "slow", nil
		}
	})
	settlement, err := s.SubmitRace(ctx, task.New("slow", slow), task.New("fast", fast))
	assert.NoError(t, err)
	assert.True(t, settlement.Fulfilled())
	assert.Equal(t, "fast", settlement.Value)
}

func TestService_SubmitAny(t *testing.T) {
	s, err := New(WithWorkers(2))
	assert.NoError(t, err)
	ctx := context.Background()
	assert.NoError(t, s.Start(ctx))
	defer s.Shutdown(ctx, true)

	failing := task.HandlerFunc(func(ctx context.Context, payload interface{}) (interface{}, error) {
		return nil, errors.New("no luck")
	})

	value, err := s.SubmitAny(ctx,
		task.New("bad", failing),
		task.New("good", task.HandlerFunc(func(ctx context.Context, payload interface{}) (interface{}, error) {
			return "recovered", nil
		})),
	)
	assert.NoError(t, err)
	assert.Equal(t, "recovered", value)

	_, err = s.SubmitAny(ctx, task.New("bad1", failing), task.New("bad2", failing))
	var aggregate *combinator.AggregateError
	if assert.ErrorAs(t, err, &aggregate) {
		assert.Len(t, aggregate.Errors, 2)
	}
}

func TestNewFromConfig(t *testing.T) {
	data := []byte(`
pool:
  workers: 2
  queueCapacity: 8
  defaultTimeoutMs: 250
`)
	config, err := ParseConfig(data)
	assert.NoError(t, err)
	assert.Equal(t, 2, config.Pool.Workers)
	assert.Equal(t, 8, config.Pool.QueueCapacity)
	assert.Equal(t, 250*time.Millisecond, config.Pool.DefaultTimeout())

	s, err := NewFromConfig(config)
	assert.NoError(t, err)
	ctx := context.Background()
	assert.NoError(t, s.Start(ctx))
	defer s.Shutdown(ctx, true)

	future, err := s.Submit(ctx, task.New("hello", task.HandlerFunc(
		func(ctx context.Context, payload interface{}) (interface{}, error) {
			return "world", nil
		})))
	assert.NoError(t, err)
	settlement, err := future.Wait(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "world", settlement.Value)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{name: "nil config", config: nil},
		{name: "defaults", config: DefaultConfig()},
		{name: "zero workers", config: &Config{}, expectErr: true},
		{name: "negative capacity", config: &Config{Pool: PoolConfig{Workers: 1, QueueCapacity: -1}}, expectErr: true},
		{name: "negative timeout", config: &Config{Pool: PoolConfig{Workers: 1, DefaultTimeoutMs: -5}}, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
