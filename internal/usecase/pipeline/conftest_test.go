package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/usecase/querycache"
	"github.com/kailas-cloud/docsearch/internal/usecase/ratelimit"
)

type mockLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	limit  int64
	err    error
}

func newMockLimiter(limit int64) *mockLimiter {
	return &mockLimiter{counts: map[string]int64{}, limit: limit}
}

func (m *mockLimiter) Admit(_ context.Context, userID string) (ratelimit.Decision, error) {
	if m.err != nil {
		return ratelimit.Decision{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.counts[userID]
	if c >= m.limit {
		return ratelimit.Decision{Count: c, Limit: m.limit}, domain.ErrRateLimitExceeded
	}
	m.counts[userID] = c + 1
	return ratelimit.Decision{Allowed: true, Count: c + 1, Limit: m.limit}, nil
}

type mockCache struct {
	mu        sync.Mutex
	entries   map[string][]result.Result
	lookupErr error
	stores    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]result.Result{}}
}

func (m *mockCache) Lookup(_ context.Context, key string) (querycache.Lookup, error) {
	if m.lookupErr != nil {
		return querycache.Lookup{}, m.lookupErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.entries[key]
	return querycache.Lookup{Hit: ok, Results: r}, nil
}

func (m *mockCache) Store(_ context.Context, key string, results []result.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores++
	m.entries[key] = results
}

type mockSearcher struct {
	searchFn func(ctx context.Context, text string, topK int, threshold float64) ([]result.Result, error)
	calls    atomic.Int64
}

func (m *mockSearcher) SimilaritySearch(
	ctx context.Context, text string, topK int, threshold float64,
) ([]result.Result, error) {
	m.calls.Add(1)
	if m.searchFn != nil {
		return m.searchFn(ctx, text, topK, threshold)
	}
	return []result.Result{result.New("a", "A", "https://example.com/a", 0.9)}, nil
}

type passAssembler struct {
	calls   atomic.Int64
	partial bool
}

func (p *passAssembler) Assemble(_ context.Context, raw []result.Result) ([]result.Result, bool) {
	p.calls.Add(1)
	return raw, !p.partial
}

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) observe(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *recorder) trace() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func mustQuery(text, userID string) query.Query {
	q, err := query.New(text, 5, 0.5, userID)
	if err != nil {
		panic(err)
	}
	return q
}

func mustKey(q query.Query) string { return querycache.Key(&q) }
