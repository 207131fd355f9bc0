// Package ingest embeds feed articles and writes them to the indexed document store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Defaults applied when Config fields are zero.
const (
	DefaultWorkers      = 4
	DefaultEmbedTimeout = 30 * time.Second
)

// Config controls ingestion concurrency.
type Config struct {
	Workers      int
	EmbedTimeout time.Duration
}

// Summary counts per-article outcomes of one run.
type Summary struct {
	Total   int
	Indexed int
	Invalid int
	Failed  int
}

// Service ingests articles through a bounded worker pool.
type Service struct {
	embedder     domain.Embedder
	docs         DocumentWriter
	throttle     Throttle
	pool         *ants.Pool
	embedTimeout time.Duration
}

// New creates a Service. Call Release when done.
func New(embedder domain.Embedder, docs DocumentWriter, throttle Throttle, cfg Config) (*Service, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = DefaultEmbedTimeout
	}
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Service{
		embedder:     embedder,
		docs:         docs,
		throttle:     throttle,
		pool:         pool,
		embedTimeout: cfg.EmbedTimeout,
	}, nil
}

// Release stops the worker pool.
func (s *Service) Release() {
	s.pool.Release()
}

// Run ingests articles. Per-article failures are logged and counted, never
// abort the run. Returns ctx.Err() when the run was interrupted.
func (s *Service) Run(ctx context.Context, articles []Article) (Summary, error) {
	log := logger.FromContext(ctx)
	var indexed, invalid, failed atomic.Int64
	var wg sync.WaitGroup

	for _, a := range articles {
		if ctx.Err() != nil {
			break
		}

		doc, err := domdoc.New(a.URL, a.Title, a.Content)
		if err != nil {
			invalid.Add(1)
			metrics.IngestArticlesTotal.WithLabelValues("invalid").Inc()
			log.Warn("Skipping invalid article", zap.String("url", a.URL), zap.Error(err))
			continue
		}

		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			if err := s.ingestOne(ctx, &doc); err != nil {
				failed.Add(1)
				metrics.IngestArticlesTotal.WithLabelValues("failed").Inc()
				log.Error("Article ingestion failed",
					zap.String("url", doc.URL()),
					zap.String("id", doc.ID()),
					zap.Error(err),
				)
				return
			}
			indexed.Add(1)
			metrics.IngestArticlesTotal.WithLabelValues("indexed").Inc()
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			metrics.IngestArticlesTotal.WithLabelValues("failed").Inc()
			log.Error("Worker pool rejected article", zap.String("url", doc.URL()), zap.Error(submitErr))
		}
	}
	wg.Wait()

	sum := Summary{
		Total:   len(articles),
		Indexed: int(indexed.Load()),
		Invalid: int(invalid.Load()),
		Failed:  int(failed.Load()),
	}
	log.Info("Ingestion run finished",
		zap.Int("total", sum.Total),
		zap.Int("indexed", sum.Indexed),
		zap.Int("invalid", sum.Invalid),
		zap.Int("failed", sum.Failed),
	)
	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("ingestion interrupted: %w", err)
	}
	return sum, nil
}

func (s *Service) ingestOne(ctx context.Context, doc *domdoc.Document) error {
	if err := s.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("throttle: %w", err)
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	res, err := s.embedder.Embed(embedCtx, doc.EmbeddingText())
	cancel()
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(res.Embedding) == 0 {
		return errors.New("embed: provider returned an empty vector")
	}

	withVec := doc.WithVector(res.Embedding)
	if err := s.docs.Upsert(ctx, &withVec); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
