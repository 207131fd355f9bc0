package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockPinger struct {
	err   error
	delay time.Duration
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	r := New(&mockPinger{}, &mockEmbeddingChecker{}, 0).Check(context.Background())

	if !r.OK() {
		t.Errorf("expected %q, got %q", Ready, r.Status)
	}
	if r.Checks[ComponentStore] != CheckOK || r.Checks[ComponentEmbedding] != CheckOK {
		t.Errorf("unexpected checks: %v", r.Checks)
	}
}

func TestCheck_StoreDown(t *testing.T) {
	r := New(&mockPinger{err: errors.New("refused")}, &mockEmbeddingChecker{}, 0).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentStore] != CheckError {
		t.Errorf("expected store error, got %q", r.Checks[ComponentStore])
	}
	if r.Checks[ComponentEmbedding] != CheckOK {
		t.Errorf("expected embedding ok, got %q", r.Checks[ComponentEmbedding])
	}
}

func TestCheck_EmbeddingDown(t *testing.T) {
	r := New(&mockPinger{}, &mockEmbeddingChecker{err: errors.New("401")}, 0).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentEmbedding] != CheckError {
		t.Errorf("expected embedding error, got %q", r.Checks[ComponentEmbedding])
	}
}

func TestCheck_NilEmbedding(t *testing.T) {
	r := New(&mockPinger{}, nil, 0).Check(context.Background())

	if !r.OK() {
		t.Errorf("expected %q, got %q", Ready, r.Status)
	}
	if _, ok := r.Checks[ComponentEmbedding]; ok {
		t.Error("embedding check should be absent")
	}
}

func TestCheck_Timeout(t *testing.T) {
	svc := New(&mockPinger{delay: time.Second}, nil, 20*time.Millisecond)

	start := time.Now()
	r := svc.Check(context.Background())
	if time.Since(start) > 500*time.Millisecond {
		t.Error("check should be bounded by the timeout")
	}
	if r.Checks[ComponentStore] != CheckError {
		t.Errorf("slow store should fail, got %q", r.Checks[ComponentStore])
	}
}
