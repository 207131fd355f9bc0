package pipeline

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/usecase/querycache"
	"github.com/kailas-cloud/docsearch/internal/usecase/ratelimit"
)

// RateLimiter admits or rejects a caller.
type RateLimiter interface {
	Admit(ctx context.Context, userID string) (ratelimit.Decision, error)
}

// Cache is the query result cache.
type Cache interface {
	Lookup(ctx context.Context, key string) (querycache.Lookup, error)
	Store(ctx context.Context, key string, results []result.Result)
}

// Searcher runs the vector similarity search.
type Searcher interface {
	SimilaritySearch(ctx context.Context, text string, topK int, threshold float64) ([]result.Result, error)
}

// Assembler builds the final result list from raw matches.
// complete is false when the list is missing entries because of a transient failure.
type Assembler interface {
	Assemble(ctx context.Context, raw []result.Result) (results []result.Result, complete bool)
}
