package querycache

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Repository persists result lists under opaque keys.
type Repository interface {
	Get(ctx context.Context, key string) (results []result.Result, found bool, err error)
	Put(ctx context.Context, key string, results []result.Result) error
}
