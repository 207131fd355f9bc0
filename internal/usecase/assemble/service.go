package assemble

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Assembler turns raw matches into the response list: one entry per URL,
// highest score first.
type Assembler struct {
	contents ContentStore // nil disables content resolution
}

// New creates an Assembler. When contents is nil, results carry no content.
func New(contents ContentStore) *Assembler {
	return &Assembler{contents: contents}
}

// Assemble deduplicates raw by URL, keeping the highest-scoring entry
// (the earliest one on ties), and sorts by descending score with ties in
// input order. A result whose content cannot be resolved is dropped alone.
// complete is false when a drop was caused by a store failure rather than a
// missing document, so the list may differ on a later call.
func (a *Assembler) Assemble(ctx context.Context, raw []result.Result) (results []result.Result, complete bool) {
	out := Dedup(raw)
	slices.SortStableFunc(out, func(x, y result.Result) int {
		switch {
		case x.Score() > y.Score():
			return -1
		case x.Score() < y.Score():
			return 1
		default:
			return 0
		}
	})

	if a.contents == nil || len(out) == 0 {
		return out, true
	}
	return a.resolve(ctx, out)
}

// Dedup keeps one result per URL. The highest score wins; on equal scores
// the first occurrence wins. Survivors keep their first-occurrence position.
func Dedup(raw []result.Result) []result.Result {
	pos := make(map[string]int, len(raw))
	out := make([]result.Result, 0, len(raw))
	for i := range raw {
		r := raw[i]
		j, seen := pos[r.URL()]
		if !seen {
			pos[r.URL()] = len(out)
			out = append(out, r)
			continue
		}
		if r.Score() > out[j].Score() {
			out[j] = r
		}
	}
	return out
}

func (a *Assembler) resolve(ctx context.Context, rs []result.Result) ([]result.Result, bool) {
	ids := make([]string, len(rs))
	for i := range rs {
		ids[i] = rs[i].ID()
	}

	lookups := a.contents.GetMany(ctx, ids)
	log := logger.FromContext(ctx)

	kept := rs[:0]
	complete := true
	for i := range rs {
		var err error
		switch {
		case i >= len(lookups):
			err = errors.New("no lookup returned")
		case lookups[i].Err != nil:
			err = lookups[i].Err
		}
		if err != nil {
			metrics.ContentResolutionFailuresTotal.Inc()
			level := zap.InfoLevel
			if !errors.Is(err, domain.ErrDocumentNotFound) {
				level = zap.WarnLevel
				complete = false
			}
			log.Log(level, "Dropping result without resolvable content",
				zap.String("id", rs[i].ID()),
				zap.String("url", rs[i].URL()),
				zap.Error(err),
			)
			continue
		}
		kept = append(kept, rs[i].WithContent(lookups[i].Document.Content()))
	}
	return kept, complete
}
