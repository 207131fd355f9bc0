package ratelimit

import "context"

// Counter is the atomic admission primitive of the counter store.
// Admit must check and increment in one indivisible step.
type Counter interface {
	Admit(ctx context.Context, identity string, limit int64) (allowed bool, count int64, err error)
}
