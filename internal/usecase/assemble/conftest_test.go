package assemble

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// mapStore resolves IDs from a map; errs overrides individual IDs.
type mapStore struct {
	docs  map[string]string
	errs  map[string]error
	calls int
	ids   []string
}

func (m *mapStore) GetMany(_ context.Context, ids []string) []domdoc.Lookup {
	m.calls++
	m.ids = ids
	out := make([]domdoc.Lookup, len(ids))
	for i, id := range ids {
		if err, ok := m.errs[id]; ok {
			out[i].Err = err
			continue
		}
		content, ok := m.docs[id]
		if !ok {
			out[i].Err = domain.ErrDocumentNotFound
			continue
		}
		out[i].Document = domdoc.Reconstruct(id, "", "", content, nil)
	}
	return out
}

func r(id, url string, score float64) result.Result {
	return result.New(id, "T"+id, url, score)
}

func urls(rs []result.Result) []string {
	out := make([]string, len(rs))
	for i := range rs {
		out[i] = rs[i].URL()
	}
	return out
}

func ids(rs []result.Result) []string {
	out := make([]string, len(rs))
	for i := range rs {
		out[i] = rs[i].ID()
	}
	return out
}
