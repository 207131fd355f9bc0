package chi

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	"github.com/kailas-cloud/docsearch/internal/usecase/pipeline"
)

// memCounter emulates the atomic admit script.
type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (m *memCounter) Admit(_ context.Context, identity string, limit int64) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	c := m.counts[identity]
	if c >= limit {
		return false, c, nil
	}
	m.counts[identity] = c + 1
	return true, c + 1, nil
}

type memCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]result.Result
}

func (m *memCacheRepo) Get(_ context.Context, key string) ([]result.Result, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.entries[key]
	return r, ok, nil
}

func (m *memCacheRepo) Put(_ context.Context, key string, results []result.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string][]result.Result{}
	}
	m.entries[key] = results
	return nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 7}, nil
}

type fakeIndex struct {
	matches []result.Result
	calls   atomic.Int64
}

func (f *fakeIndex) SearchKNN(_ context.Context, _ []float32, topK int) ([]result.Result, error) {
	f.calls.Add(1)
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

type stubSearcher struct {
	resp pipeline.Response
	err  error
	got  query.Query
	ctx  context.Context
}

func (s *stubSearcher) Search(ctx context.Context, q query.Query) (pipeline.Response, error) {
	s.got, s.ctx = q, ctx
	return s.resp, s.err
}

type stubReadiness struct {
	report healthuc.Report
}

func (s stubReadiness) Check(_ context.Context) healthuc.Report { return s.report }

func testLogger() *zap.Logger { return zap.NewNop() }
