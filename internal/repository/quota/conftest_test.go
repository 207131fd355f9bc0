package quota

import (
	"context"
	"testing"
	"time"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	evalFn func(ctx context.Context, script string, keys, args []string) ([]int64, error)
}

func (m *mockStore) EvalInt64s(ctx context.Context, script string, keys, args []string) ([]int64, error) {
	if m.evalFn != nil {
		return m.evalFn(ctx, script, keys, args)
	}
	return []int64{1, 1}, nil
}

func newTestStore(t *testing.T, window time.Duration) (*Store, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, window), ms
}
