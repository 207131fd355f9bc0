package querycache

import "github.com/kailas-cloud/docsearch/internal/domain/search/result"

// envelopeVersion is bumped whenever the stored layout changes.
// Entries written with any other version are treated as unreadable.
const envelopeVersion = 1

type envelope struct {
	V       int         `json:"v"`
	Results []resultDTO `json:"results"`
}

type resultDTO struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Content string  `json:"content,omitempty"`
}

func toDTO(results []result.Result) envelope {
	env := envelope{V: envelopeVersion, Results: make([]resultDTO, len(results))}
	for i := range results {
		r := &results[i]
		env.Results[i] = resultDTO{
			ID:      r.ID(),
			Title:   r.Title(),
			URL:     r.URL(),
			Score:   r.Score(),
			Content: r.Content(),
		}
	}
	return env
}

func (e envelope) toDomain() []result.Result {
	out := make([]result.Result, len(e.Results))
	for i, d := range e.Results {
		out[i] = result.New(d.ID, d.Title, d.URL, d.Score).WithContent(d.Content)
	}
	return out
}
