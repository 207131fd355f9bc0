package assemble

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

func TestAssemble_DedupHighestScoreWins(t *testing.T) {
	a := New(nil)
	raw := []result.Result{
		r("1", "https://a", 0.6),
		r("2", "https://b", 0.7),
		r("3", "https://a", 0.9),
	}

	got, _ := a.Assemble(context.Background(), raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID() != "3" || got[0].Score() != 0.9 {
		t.Errorf("expected higher-scoring duplicate first, got %s/%v", got[0].ID(), got[0].Score())
	}
	if got[1].ID() != "2" {
		t.Errorf("expected b second, got %s", got[1].ID())
	}
}

func TestAssemble_DedupTieKeepsFirst(t *testing.T) {
	a := New(nil)
	raw := []result.Result{
		r("first", "https://a", 0.8),
		r("second", "https://a", 0.8),
	}

	got, _ := a.Assemble(context.Background(), raw)
	if len(got) != 1 || got[0].ID() != "first" {
		t.Errorf("expected first occurrence kept, got %v", ids(got))
	}
}

func TestAssemble_SortedStable(t *testing.T) {
	a := New(nil)
	raw := []result.Result{
		r("1", "https://a", 0.5),
		r("2", "https://b", 0.9),
		r("3", "https://c", 0.5),
		r("4", "https://d", 0.7),
	}

	got, _ := a.Assemble(context.Background(), raw)
	want := []string{"2", "4", "1", "3"}
	if !slices.Equal(ids(got), want) {
		t.Errorf("expected %v, got %v", want, ids(got))
	}
}

func TestAssemble_UniqueURLsProperty(t *testing.T) {
	a := New(nil)
	raw := []result.Result{
		r("1", "https://a", 0.1), r("2", "https://b", 0.2), r("3", "https://a", 0.3),
		r("4", "https://c", 0.3), r("5", "https://b", 0.2), r("6", "https://c", 0.9),
	}

	got, _ := a.Assemble(context.Background(), raw)
	seen := map[string]bool{}
	for i := range got {
		if seen[got[i].URL()] {
			t.Fatalf("duplicate url %s in %v", got[i].URL(), urls(got))
		}
		seen[got[i].URL()] = true
		if i > 0 && got[i].Score() > got[i-1].Score() {
			t.Fatalf("not sorted by descending score: %v", got)
		}
	}
	if len(got) != 3 {
		t.Errorf("expected 3 unique urls, got %d", len(got))
	}
}

func TestAssemble_Empty(t *testing.T) {
	store := &mapStore{}
	a := New(store)

	if got, _ := a.Assemble(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
	if store.calls != 0 {
		t.Error("content store must not be called for empty input")
	}
}

func TestAssemble_ResolvesContent(t *testing.T) {
	store := &mapStore{docs: map[string]string{"1": "one", "2": "two"}}
	a := New(store)

	got, _ := a.Assemble(context.Background(), []result.Result{
		r("1", "https://a", 0.5),
		r("2", "https://b", 0.9),
	})

	if store.calls != 1 {
		t.Errorf("expected one batched lookup, got %d", store.calls)
	}
	if !slices.Equal(store.ids, []string{"2", "1"}) {
		t.Errorf("expected lookup in output order, got %v", store.ids)
	}
	if len(got) != 2 || got[0].Content() != "two" || got[1].Content() != "one" {
		t.Errorf("unexpected contents: %+v", got)
	}
}

func TestAssemble_DropsUnresolvable(t *testing.T) {
	store := &mapStore{
		docs: map[string]string{"1": "one", "3": "three"},
		errs: map[string]error{"3": errors.New("timeout")},
	}
	a := New(store)

	got, _ := a.Assemble(context.Background(), []result.Result{
		r("1", "https://a", 0.9),
		r("2", "https://b", 0.8), // missing
		r("3", "https://c", 0.7), // transport failure
	})

	if !slices.Equal(ids(got), []string{"1"}) {
		t.Errorf("expected only resolvable result kept, got %v", ids(got))
	}
}

func TestAssemble_Completeness(t *testing.T) {
	tests := []struct {
		name string
		errs map[string]error
		want bool
	}{
		{"all resolved", nil, true},
		{"missing document", map[string]error{"2": domain.ErrDocumentNotFound}, true},
		{"store failure", map[string]error{"2": errors.New("timeout")}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := New(&mapStore{docs: map[string]string{"1": "one", "2": "two"}, errs: tc.errs})
			_, complete := a.Assemble(context.Background(), []result.Result{
				r("1", "https://a", 0.9),
				r("2", "https://b", 0.8),
			})
			if complete != tc.want {
				t.Errorf("complete = %v, want %v", complete, tc.want)
			}
		})
	}

	if _, complete := New(nil).Assemble(context.Background(), []result.Result{r("1", "https://a", 0.9)}); !complete {
		t.Error("assembler without content store is always complete")
	}
}

func TestDedup_DoesNotMutateInput(t *testing.T) {
	raw := []result.Result{r("1", "https://a", 0.1), r("2", "https://a", 0.9)}
	_ = Dedup(raw)
	if raw[0].ID() != "1" || raw[1].ID() != "2" {
		t.Error("input must not be modified")
	}
}
