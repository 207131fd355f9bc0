package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	"github.com/kailas-cloud/docsearch/internal/usecase/querycache"
	"github.com/kailas-cloud/docsearch/internal/usecase/ratelimit"
)

// Response is the outcome of a successful run.
type Response struct {
	Query         string
	Results       []result.Result
	InferenceTime time.Duration
	Cached        bool
	Quota         ratelimit.Decision
}

// TotalResults returns the number of results.
func (r *Response) TotalResults() int { return len(r.Results) }

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now for inference time measurement.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver registers a callback invoked on every state transition.
func WithObserver(fn func(State)) Option {
	return func(s *Service) { s.observe = fn }
}

// Service orchestrates one search request:
// rate limit, cache lookup, then on a miss search, assemble and cache store.
type Service struct {
	limiter   RateLimiter
	cache     Cache
	searcher  Searcher
	assembler Assembler
	group     singleflight.Group
	now       func() time.Time
	observe   func(State)
}

// New creates a pipeline Service.
func New(limiter RateLimiter, cache Cache, searcher Searcher, assembler Assembler, opts ...Option) *Service {
	s := &Service{
		limiter:   limiter,
		cache:     cache,
		searcher:  searcher,
		assembler: assembler,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type receivedAtKey struct{}

// ContextWithReceivedAt records when the request entered the service.
// Search measures InferenceTime from it instead of from its own start.
func ContextWithReceivedAt(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, receivedAtKey{}, t)
}

// ReceivedAtFromContext returns the time set by ContextWithReceivedAt.
func ReceivedAtFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(receivedAtKey{}).(time.Time)
	return t, ok
}

// Search runs the pipeline for q.
// Errors wrap ErrRateLimitExceeded, ErrRateLimiterUnavailable, ErrInvalidIdentity
// or a *domain.SearchOperationError.
func (s *Service) Search(ctx context.Context, q query.Query) (Response, error) {
	start, ok := ReceivedAtFromContext(ctx)
	if !ok {
		start = s.now()
	}
	r := &run{svc: s, log: logger.FromContext(ctx), start: start}
	r.to(StateReceived)

	decision, err := s.limiter.Admit(ctx, q.UserID())
	if err != nil {
		return Response{Quota: decision}, r.fail(limiterReason(err), err)
	}
	r.to(StateRateLimitChecked)

	key := querycache.Key(&q)
	lookup, err := s.cache.Lookup(ctx, key)
	if err != nil {
		r.log.Warn("Query cache unavailable, treating as miss", zap.Error(err))
	}
	r.to(StateCacheChecked)

	if lookup.Hit {
		r.to(StateCacheHit)
		return r.respond(q, lookup.Results, decision, true), nil
	}
	r.to(StateCacheMiss)

	results, err := s.searchShared(ctx, r, key, q)
	if err != nil {
		reason := ReasonSearchOperationFailed
		if !errors.Is(err, domain.ErrSearchOperationFailed) && isContextErr(err) {
			reason = ReasonCanceled
		}
		return Response{Quota: decision}, r.fail(reason, err)
	}

	return r.respond(q, results, decision, false), nil
}

// sharedSearch is what one coalesced search hands to every waiting caller.
type sharedSearch struct {
	results  []result.Result
	reached  []State
	tokens   int
	embedded bool
}

// searchShared coalesces concurrent misses for the same key into one
// search, assemble and store. Every caller still paid its own admission.
// The shared work is detached from the leader's cancellation; each caller
// stops waiting when its own context is done. Once the work finishes, every
// caller replays the stages it reached and records its embedding tokens.
func (s *Service) searchShared(ctx context.Context, r *run, key string, q query.Query) ([]result.Result, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		work, usage := domain.NewContextWithUsage(context.WithoutCancel(ctx))
		out := &sharedSearch{reached: []State{StateSearching}}
		defer func() { out.tokens, out.embedded = usage.Snapshot() }()

		raw, err := s.searcher.SimilaritySearch(work, q.Text(), q.TopK(), q.Threshold())
		if err != nil {
			return out, err //nolint:wrapcheck // typed SearchOperationError
		}

		out.reached = append(out.reached, StateAssembling)
		results, complete := s.assembler.Assemble(work, raw)
		out.results = results

		if !complete {
			logger.FromContext(ctx).Warn("Skipping query cache store for partial results", zap.Int("results", len(results)))
			return out, nil
		}
		out.reached = append(out.reached, StateCacheStoring)
		s.cache.Store(work, key, results)
		return out, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for search: %w", ctx.Err())
	case res := <-ch:
		shared, _ := res.Val.(*sharedSearch)
		if shared != nil {
			for _, st := range shared.reached {
				r.to(st)
			}
			if shared.embedded {
				domain.UsageFromContext(ctx).AddTokens(shared.tokens)
			}
		}
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			r.log.Debug("Search result shared with concurrent identical request")
		}
		return slices.Clone(shared.results), nil
	}
}

type run struct {
	svc   *Service
	log   *zap.Logger
	start time.Time
}

func (r *run) to(st State) {
	r.log.Debug("Pipeline transition", zap.String("state", string(st)))
	if r.svc.observe != nil {
		r.svc.observe(st)
	}
}

func (r *run) respond(q query.Query, results []result.Result, d ratelimit.Decision, cached bool) Response {
	r.to(StateResponding)
	resp := Response{
		Query:         q.Text(),
		Results:       results,
		InferenceTime: r.svc.now().Sub(r.start),
		Cached:        cached,
		Quota:         d,
	}
	if resp.Results == nil {
		resp.Results = []result.Result{}
	}

	path, outcome := "miss", "searched"
	if cached {
		path, outcome = "hit", "cache_hit"
	}
	metrics.PipelineDuration.WithLabelValues(path).Observe(resp.InferenceTime.Seconds())
	metrics.PipelineOutcomesTotal.WithLabelValues(outcome).Inc()
	r.to(StateDone)
	return resp
}

func (r *run) fail(reason Reason, err error) error {
	r.log.Debug("Pipeline failed", zap.String("reason", string(reason)), zap.Error(err))
	metrics.PipelineOutcomesTotal.WithLabelValues(string(reason)).Inc()
	r.to(StateFailed)
	return err
}

func limiterReason(err error) Reason {
	switch {
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return ReasonRateLimitExceeded
	case errors.Is(err, domain.ErrInvalidIdentity):
		return ReasonInvalidQuery
	default:
		return ReasonRateLimiterUnavailable
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
