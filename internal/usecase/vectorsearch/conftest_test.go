package vectorsearch

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 3}, nil
}

type mockIndex struct {
	searchFn func(ctx context.Context, vector []float32, topK int) ([]result.Result, error)
	calls    int
}

func (m *mockIndex) SearchKNN(ctx context.Context, vector []float32, topK int) ([]result.Result, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, topK)
	}
	return nil, nil
}

func fixedMatches(scores ...float64) []result.Result {
	out := make([]result.Result, len(scores))
	for i, s := range scores {
		id := string(rune('a' + i))
		out[i] = result.New(id, "Title "+id, "https://example.com/"+id, s)
	}
	return out
}
