package vectorsearch

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Default per-stage timeouts.
const (
	DefaultEmbedTimeout = 5 * time.Second
	DefaultQueryTimeout = 2 * time.Second
)

// Config sets the per-stage timeouts.
type Config struct {
	EmbedTimeout time.Duration
	QueryTimeout time.Duration
}

// Client encodes query text and retrieves similar documents from the index.
type Client struct {
	embed        Embedder
	index        Index
	embedTimeout time.Duration
	queryTimeout time.Duration
}

// New creates a vector search client.
func New(embed Embedder, index Index, cfg Config) *Client {
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = DefaultEmbedTimeout
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	return &Client{
		embed:        embed,
		index:        index,
		embedTimeout: cfg.EmbedTimeout,
		queryTimeout: cfg.QueryTimeout,
	}
}

// SimilaritySearch returns up to topK documents whose score is at least threshold,
// in index order (highest score first). Failures are *domain.SearchOperationError
// with cause ErrEncodingFailed or ErrSearchBackendUnavailable.
func (c *Client) SimilaritySearch(
	ctx context.Context, text string, topK int, threshold float64,
) ([]result.Result, error) {
	vec, err := c.encode(ctx, text)
	if err != nil {
		return nil, c.fail(ctx, domain.ErrEncodingFailed, encodingRetryable(err), err)
	}

	matches, err := c.query(ctx, vec, topK)
	if err != nil {
		return nil, c.fail(ctx, domain.ErrSearchBackendUnavailable, backendRetryable(err), err)
	}

	kept := make([]result.Result, 0, len(matches))
	for i := range matches {
		if matches[i].Score() >= threshold {
			kept = append(kept, matches[i])
		}
	}
	return kept, nil
}

func (c *Client) encode(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	res, err := c.embed.Embed(ctx, text)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by fail
	}
	if len(res.Embedding) == 0 {
		return nil, errEmptyEmbedding
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res.Embedding, nil
}

func (c *Client) query(ctx context.Context, vec []float32, topK int) ([]result.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	return c.index.SearchKNN(ctx, vec, topK) //nolint:wrapcheck // wrapped by fail
}

func (c *Client) fail(ctx context.Context, cause error, retryable bool, err error) error {
	label := "backend"
	if errors.Is(cause, domain.ErrEncodingFailed) {
		label = "encoding"
	}
	metrics.SearchFailuresTotal.WithLabelValues(label, strconv.FormatBool(retryable)).Inc()
	logger.FromContext(ctx).Warn("Vector search failed",
		zap.String("cause", label),
		zap.Bool("retryable", retryable),
		zap.Error(err),
	)
	return domain.NewSearchOperationError(cause, retryable, err)
}

var errEmptyEmbedding = errors.New("embedder returned an empty vector")

// encodingRetryable: timeouts and transient provider failures may succeed on retry;
// rejected input, auth failures and malformed responses will not.
func encodingRetryable(err error) bool {
	if isContextErr(err) {
		return true
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return pe.Temporary()
	}
	return false
}

// backendRetryable: a missing index or a rejected query is permanent;
// anything else (timeouts, connection failures) is transient.
func backendRetryable(err error) bool {
	if errors.Is(err, domain.ErrIndexNotFound) || errors.Is(err, domain.ErrSearchRejected) {
		return false
	}
	return true
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
