package ingest

import (
	"context"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// DocumentWriter persists embedded documents.
type DocumentWriter interface {
	Upsert(ctx context.Context, doc *domdoc.Document) error
}

// Throttle paces embedding requests.
type Throttle interface {
	Wait(ctx context.Context) error
}
