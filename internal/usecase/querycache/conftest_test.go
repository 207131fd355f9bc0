package querycache

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// memRepo is an in-memory Repository.
type memRepo struct {
	mu      sync.Mutex
	entries map[string][]result.Result
	getErr  error
	putErr  error
	block   bool
	puts    int
}

func newMemRepo() *memRepo {
	return &memRepo{entries: make(map[string][]result.Result)}
}

func (m *memRepo) Get(ctx context.Context, key string) ([]result.Result, bool, error) {
	if m.block {
		<-ctx.Done()
		return nil, false, ctx.Err()
	}
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.entries[key]
	return r, ok, nil
}

func (m *memRepo) Put(_ context.Context, key string, results []result.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[key] = results
	return nil
}

func mustQuery(t *testing.T, text string, topK int, threshold float64, user string) query.Query {
	t.Helper()
	q, err := query.New(text, topK, threshold, user)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}
