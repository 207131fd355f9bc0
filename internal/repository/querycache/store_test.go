package querycache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

func TestPutThenGet(t *testing.T) {
	s, ms := newTestStore(t)
	ctx := context.Background()

	var stored []byte
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		if key != "k" {
			t.Errorf("unexpected key %q", key)
		}
		if ttl != time.Hour {
			t.Errorf("expected 1h ttl, got %v", ttl)
		}
		stored = value
		return nil
	}
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return stored, nil
	}

	in := []result.Result{
		result.New("1", "Go", "https://go.dev", 0.9).WithContent("body"),
		result.New("2", "Rust", "https://rust-lang.org", 0.7),
	}
	if err := s.Put(ctx, "k", in); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasPrefix(string(stored), `{"v":1,`) {
		t.Errorf("expected versioned envelope, got %s", stored)
	}

	out, found, err := s.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if len(out) != 2 || out[0].URL() != "https://go.dev" || out[0].Content() != "body" || out[1].Score() != 0.7 {
		t.Errorf("unexpected results: %+v", out)
	}
}

func TestGet_EmptyListIsHit(t *testing.T) {
	s, ms := newTestStore(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{"v":1,"results":[]}`), nil
	}

	out, found, err := s.Get(context.Background(), "k")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty results, got %d", len(out))
	}
}

func TestGet_Miss(t *testing.T) {
	s, _ := newTestStore(t)

	_, found, err := s.Get(context.Background(), "k")
	if err != nil || found {
		t.Errorf("expected clean miss, got found=%v err=%v", found, err)
	}
}

func TestGet_StoreError(t *testing.T) {
	s, ms := newTestStore(t)
	down := errors.New("timeout")
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return nil, down }

	if _, _, err := s.Get(context.Background(), "k"); !errors.Is(err, down) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestGet_Undecodable(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"garbage", "\x80\x04pickle"},
		{"wrong version", `{"v":2,"results":[]}`},
		{"missing version", `{"results":[]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, ms := newTestStore(t)
			ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return []byte(tc.payload), nil }

			_, found, err := s.Get(context.Background(), "k")
			if err == nil || found {
				t.Errorf("expected decode error, got found=%v err=%v", found, err)
			}
		})
	}
}

func TestPut_StoreError(t *testing.T) {
	s, ms := newTestStore(t)
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("OOM")
	}

	if err := s.Put(context.Background(), "k", nil); err == nil {
		t.Fatal("expected error")
	}
}
