package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// DefaultTimeout bounds each cache round trip.
const DefaultTimeout = 200 * time.Millisecond

var keyPrefix = domain.KeyPrefix + "qcache:"

// Lookup is the outcome of a cache read. A hit may carry an empty result list.
type Lookup struct {
	Hit     bool
	Results []result.Result
}

// Service is the cache-aside layer in front of vector search.
type Service struct {
	repo    Repository
	timeout time.Duration
}

// New creates a cache service. A zero timeout selects DefaultTimeout.
func New(repo Repository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{repo: repo, timeout: timeout}
}

// Key derives the cache key of a query from its normalized text, top_k and threshold.
// Queries that differ only in whitespace or caller map to the same key.
func Key(q *query.Query) string {
	sum := sha256.Sum256([]byte(query.NormalizeText(q.Text())))
	return keyPrefix + hex.EncodeToString(sum[:]) +
		":" + strconv.Itoa(q.TopK()) +
		":" + strconv.FormatFloat(q.Threshold(), 'f', 6, 64)
}

// Lookup reads key. Absent keys are a clean miss. Store failures, timeouts
// and unreadable entries return ErrCacheUnavailable; callers treat that as a miss.
func (s *Service) Lookup(ctx context.Context, key string) (Lookup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results, found, err := s.repo.Get(ctx, key)
	if err != nil {
		metrics.QueryCacheTotal.WithLabelValues("unavailable").Inc()
		return Lookup{}, fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	if !found {
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
		return Lookup{}, nil
	}

	metrics.QueryCacheTotal.WithLabelValues("hit").Inc()
	return Lookup{Hit: true, Results: results}, nil
}

// Store writes results under key. It is best-effort: failures are logged and
// counted, never returned.
func (s *Service) Store(ctx context.Context, key string, results []result.Result) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Put(ctx, key, results); err != nil {
		metrics.QueryCacheStoreFailuresTotal.Inc()
		logger.FromContext(ctx).Warn("Failed to store query results in cache",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
