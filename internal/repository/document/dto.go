package document

import (
	"github.com/kailas-cloud/docsearch/internal/db"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

const (
	fieldTitle   = "title"
	fieldURL     = "url"
	fieldContent = "content"
	fieldVector  = "__vector"
)

// buildHashFields converts a domain Document into a flat map[string]string for HSET.
func buildHashFields(doc *domdoc.Document) map[string]string {
	return map[string]string{
		fieldTitle:   doc.Title(),
		fieldURL:     doc.URL(),
		fieldContent: doc.Content(),
		fieldVector:  string(db.EncodeVector(doc.Vector())),
	}
}

// parseHashFields converts a flat hash map back into a domain Document.
func parseHashFields(id string, m map[string]string) domdoc.Document {
	return domdoc.Reconstruct(id, m[fieldURL], m[fieldTitle], m[fieldContent], decodeVector(m[fieldVector]))
}

// decodeVector returns nil for a missing or malformed vector field.
func decodeVector(s string) []float32 {
	if s == "" {
		return nil
	}
	v, err := db.DecodeVector([]byte(s))
	if err != nil {
		return nil
	}
	return v
}
