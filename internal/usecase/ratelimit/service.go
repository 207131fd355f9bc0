package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/identity"
	"github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Defaults applied when Config fields are zero.
const (
	DefaultLimit   = 5
	DefaultTimeout = 500 * time.Millisecond
)

// Config controls the admission policy.
type Config struct {
	Limit   int64
	Timeout time.Duration
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	Count   int64 // counter value after the decision
	Limit   int64
}

// Remaining returns how many requests the identity may still make.
func (d Decision) Remaining() int64 {
	return max(0, d.Limit-d.Count)
}

// Limiter enforces a per-identity request quota.
// It holds no counts in process; every decision is made by the counter store.
type Limiter struct {
	counter Counter
	limit   int64
	timeout time.Duration
}

// New creates a Limiter.
func New(counter Counter, cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Limiter{counter: counter, limit: cfg.Limit, timeout: cfg.Timeout}
}

// Admit consumes one request from the caller's quota.
// Returns ErrInvalidIdentity, ErrRateLimitExceeded (with the decision),
// or ErrRateLimiterUnavailable when the store cannot be consulted.
func (l *Limiter) Admit(ctx context.Context, userID string) (Decision, error) {
	id, err := identity.Canonicalize(userID)
	if err != nil {
		return Decision{}, err //nolint:wrapcheck // already carries ErrInvalidIdentity
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	allowed, count, err := l.counter.Admit(ctx, id, l.limit)
	if err != nil {
		metrics.RateLimitDecisionsTotal.WithLabelValues("unavailable").Inc()
		logger.FromContext(ctx).Error("Rate limiter unavailable",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return Decision{}, fmt.Errorf("%w: %w", domain.ErrRateLimiterUnavailable, err)
	}

	d := Decision{Allowed: allowed, Count: count, Limit: l.limit}
	if !allowed {
		metrics.RateLimitDecisionsTotal.WithLabelValues("rejected").Inc()
		return d, fmt.Errorf("%w: %d of %d requests used", domain.ErrRateLimitExceeded, count, l.limit)
	}

	metrics.RateLimitDecisionsTotal.WithLabelValues("allowed").Inc()
	return d, nil
}

// Limit returns the configured per-identity quota.
func (l *Limiter) Limit() int64 { return l.limit }
