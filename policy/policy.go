// Package policy provides an optional, context-carried submission policy. It
// is deliberately decoupled from the pool so that using it is entirely
// opt-in – callers that do not embed a Policy in their context keep the
// default blocking-submit behaviour.

package policy

import (
	"context"
	"time"
)

// Submission modes recognised by the pool.
const (
	ModeBlock  = "block"  // submit blocks while the queue is at capacity (default)
	ModeReject = "reject" // submit fails with a queue-full error instead of blocking
)

// Policy represents submission settings for the current caller.
//
//   - SubmitMode controls backpressure handling (block / reject).
//   - DefaultTimeout applies to tasks without an explicit deadline.
//
// A nil *Policy means "block on backpressure, no extra timeout" and is
// therefore the zero-cost default.
type Policy struct {
	SubmitMode     string
	DefaultTimeout time.Duration
}

// Rejects reports whether submissions should fail instead of blocking when
// the queue is at capacity.
func (p *Policy) Rejects() bool {
	return p != nil && p.SubmitMode == ModeReject
}

// Timeout returns the policy's default task deadline, zero when unset.
func (p *Policy) Timeout() time.Duration {
	if p == nil {
		return 0
	}
	return p.DefaultTimeout
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy, or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
