package dao

import "context"

// Parameter is a simple name/value criterion applied by List.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a list criterion.
func NewParameter(name string, value interface{}) *Parameter {
	return &Parameter{Name: name, Value: value}
}

// Service is a generic keyed store for entities of type T addressed by K.
// Implementations must be safe for concurrent use.
type Service[K comparable, T any] interface {
	// Save stores or overwrites a record.
	Save(ctx context.Context, v *T) error

	// Load returns a record by key, or nil when absent.
	Load(ctx context.Context, key K) (*T, error)

	// Delete removes a record.
	Delete(ctx context.Context, key K) error

	// List returns records matching all supplied criteria.
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
