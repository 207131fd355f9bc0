package result

// Result is a single search hit.
type Result struct {
	id      string
	title   string
	url     string
	score   float64
	content string
}

// New creates a search result without content.
func New(id, title, url string, score float64) Result {
	return Result{id: id, title: title, url: url, score: score}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Title returns the document title.
func (r *Result) Title() string { return r.title }

// URL returns the document URL, the deduplication key.
func (r *Result) URL() string { return r.url }

// Score returns the similarity score in [0,1].
func (r *Result) Score() float64 { return r.score }

// Content returns the resolved document content ("" when not resolved).
func (r *Result) Content() string { return r.content }

// WithContent returns a copy of the result carrying the given content.
func (r Result) WithContent(content string) Result {
	r.content = content
	return r
}
