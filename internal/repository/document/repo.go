package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

var keyPrefix = domain.KeyPrefix + "doc:"

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) []db.HashGetResult
}

// Repo stores ingested documents as hashes under the indexed prefix.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert writes a document, replacing any previous version with the same ID.
func (r *Repo) Upsert(ctx context.Context, doc *domdoc.Document) error {
	if len(doc.Vector()) == 0 {
		return fmt.Errorf("upsert %s: document has no vector", doc.ID())
	}
	key := docKey(doc.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(doc)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// GetMany fetches documents by ID in one round trip.
// The result has one Lookup per ID, in the same order.
func (r *Repo) GetMany(ctx context.Context, ids []string) []domdoc.Lookup {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(id)
	}

	raw := r.store.HGetAllMulti(ctx, keys)
	out := make([]domdoc.Lookup, len(ids))
	for i, id := range ids {
		if i >= len(raw) {
			out[i].Err = fmt.Errorf("hgetall %s: missing reply", keys[i])
			continue
		}
		switch err := raw[i].Err; {
		case errors.Is(err, db.ErrKeyNotFound):
			out[i].Err = domain.ErrDocumentNotFound
		case err != nil:
			out[i].Err = fmt.Errorf("hgetall %s: %w", keys[i], err)
		default:
			out[i].Document = parseHashFields(id, raw[i].Fields)
		}
	}
	return out
}

func docKey(id string) string {
	return keyPrefix + id
}
