package assemble

import (
	"context"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// ContentStore resolves documents by ID in one round trip.
// It returns one lookup per ID, in order.
type ContentStore interface {
	GetMany(ctx context.Context, ids []string) []domdoc.Lookup
}
