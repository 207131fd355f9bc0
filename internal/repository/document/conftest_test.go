package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/db"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllMultiFn func(ctx context.Context, keys []string) []db.HashGetResult
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) []db.HashGetResult {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	out := make([]db.HashGetResult, len(keys))
	for i := range out {
		out[i].Err = db.ErrKeyNotFound
	}
	return out
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testDoc(t *testing.T) domdoc.Document {
	t.Helper()
	d, err := domdoc.New("https://example.com/post", "Post", "hello world")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return d.WithVector([]float32{0.1, 0.2, 0.3, 0.4})
}
