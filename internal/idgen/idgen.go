package idgen

import "github.com/google/uuid"

// NewFunc produces a new globally unique identifier. Tests may override it
// to obtain deterministic task IDs.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new unique identifier as string.
func New() string { return NewFunc() }
