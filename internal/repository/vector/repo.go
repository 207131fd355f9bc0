package vector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

const (
	// IndexName is the FT index over all ingested documents.
	IndexName = domain.KeyPrefix + "idx"
	// DocPrefix is the key prefix of document hashes covered by the index.
	DocPrefix = domain.KeyPrefix + "doc:"

	vectorAttr = "vector"
)

// store is the consumer interface for vector search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// IndexConfig sizes the HNSW vector field.
type IndexConfig struct {
	Dimension      int
	M              int
	EFConstruction int
}

// Repo runs nearest-neighbour queries against the document index.
type Repo struct {
	store store
	cfg   IndexConfig
}

// New creates a vector repository.
func New(s store, cfg IndexConfig) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// SearchKNN returns the topK nearest documents to vector, nearest first.
// Scores are cosine similarity in [0,1].
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, topK int) ([]result.Result, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		VectorField:  vectorAttr,
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"title", "url"},
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrIndexNotFound):
			return nil, fmt.Errorf("search knn: %w: %w", domain.ErrIndexNotFound, err)
		case errors.Is(err, db.ErrQueryRejected):
			return nil, fmt.Errorf("search knn: %w: %w", domain.ErrSearchRejected, err)
		}
		return nil, fmt.Errorf("search knn: %w", err)
	}

	return parseKNNResults(sr), nil
}

// EnsureIndex creates the document index if it does not exist yet.
// It reports whether the index was created by this call.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", IndexName, err)
	}
	if exists {
		return false, nil
	}

	def, err := r.indexDefinition()
	if err != nil {
		return false, err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil // created concurrently by another replica
		}
		return false, fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return true, nil
}

func (r *Repo) indexDefinition() (*db.IndexDefinition, error) {
	def, err := db.NewIndex(IndexName).
		Prefix(DocPrefix).
		Text("title").
		Tag("url").
		Vector("__vector", vectorAttr, r.cfg.Dimension, db.VectorHNSW, r.cfg.M, r.cfg.EFConstruction).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index definition: %w", err)
	}
	return def, nil
}

func parseKNNResults(sr *db.SearchResult) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, DocPrefix)
		results = append(results, result.New(id, entry.Fields["title"], entry.Fields["url"], entry.Score))
	}
	return results
}
