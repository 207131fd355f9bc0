package vectorsearch

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index runs nearest-neighbour queries. Results come back nearest first.
type Index interface {
	SearchKNN(ctx context.Context, vector []float32, topK int) ([]result.Result, error)
}
