package document

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// NoTitle is stored when an article carries no title.
const NoTitle = "No title found"

// idNamespace seeds UUIDv5 document IDs so re-ingesting a URL overwrites the same record.
var idNamespace = uuid.MustParse("6f1f7a7e-4a9b-5c55-9a43-3b7f1d0c2b10")

// Document is an ingested article (immutable value object).
type Document struct {
	id      string
	url     string
	title   string
	content string
	vector  []float32
}

// New validates and creates a Document. The ID is derived from the URL.
// URL: absolute http(s). Content: non-empty, max 160KB. Empty title becomes NoTitle.
func New(rawURL, title, content string) (Document, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Document{}, fmt.Errorf("document url must be an absolute http(s) URL, got %q", rawURL)
	}
	if strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = NoTitle
	}

	canonical := u.String()
	return Document{
		id:      IDForURL(canonical),
		url:     canonical,
		title:   title,
		content: content,
	}, nil
}

// IDForURL returns the deterministic document ID for a URL.
func IDForURL(u string) string {
	return uuid.NewSHA1(idNamespace, []byte(u)).String()
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, rawURL, title, content string, vector []float32) Document {
	return Document{id: id, url: rawURL, title: title, content: content, vector: vector}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// URL returns the source URL.
func (d *Document) URL() string { return d.url }

// Title returns the article title.
func (d *Document) Title() string { return d.title }

// Content returns the article text.
func (d *Document) Content() string { return d.content }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// EmbeddingText is the text vectorized at ingestion: title and content joined by a space.
func (d *Document) EmbeddingText() string { return d.title + " " + d.content }

// WithVector returns a copy carrying the embedding vector.
func (d Document) WithVector(v []float32) Document {
	d.vector = v
	return d
}

// Lookup is the per-ID outcome of a batched document fetch.
type Lookup struct {
	Document Document
	Err      error // domain.ErrDocumentNotFound for missing IDs
}
