package runly

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON or YAML; the zero value inherits the package
// defaults.
type Config struct {
	Pool PoolConfig `json:"pool" yaml:"pool"`
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	// Workers is the number of task workers; at least 1.
	Workers int `json:"workers" yaml:"workers"`
	// QueueCapacity bounds the task queue; zero means submissions block
	// until a worker is free.
	QueueCapacity int `json:"queueCapacity" yaml:"queueCapacity"`
	// DefaultTimeoutMs applies to tasks submitted without their own
	// deadline; zero disables it.
	DefaultTimeoutMs int `json:"defaultTimeoutMs" yaml:"defaultTimeoutMs"`
}

// DefaultConfig returns a Config populated with the same defaults the
// constructors use. Callers may modify the returned struct before passing it
// to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			Workers:       5,
			QueueCapacity: 100,
		},
	}
}

// ParseConfig decodes a YAML document into a Config.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Pool.Workers < 1 {
		return fmt.Errorf("pool.workers must be >= 1, had: %d", c.Pool.Workers)
	}
	if c.Pool.QueueCapacity < 0 {
		return fmt.Errorf("pool.queueCapacity must be >= 0, had: %d", c.Pool.QueueCapacity)
	}
	if c.Pool.DefaultTimeoutMs < 0 {
		return fmt.Errorf("pool.defaultTimeoutMs must be >= 0, had: %d", c.Pool.DefaultTimeoutMs)
	}
	return nil
}

// DefaultTimeout returns the configured default deadline as a duration.
func (c *PoolConfig) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMs) * time.Millisecond
}
