// Package query holds the validated search query value.
package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/identity"
)

// Search parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length in bytes.
	MaxTextLength = 4096
	MaxTopK       = 100
)

// Query is an immutable, validated search request owned by one pipeline run.
type Query struct {
	text      string
	topK      int
	threshold float64
	userID    string
}

// New validates and normalizes search parameters.
// Text whitespace runs collapse to a single space; userID is canonicalized.
func New(text string, topK int, threshold float64, userID string) (Query, error) {
	norm := NormalizeText(text)
	if norm == "" {
		return Query{}, fmt.Errorf("%w: text is required", domain.ErrInvalidQuery)
	}
	if len(norm) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: text too long (max %d bytes)", domain.ErrInvalidQuery, MaxTextLength)
	}
	if topK <= 0 || topK > MaxTopK {
		return Query{}, fmt.Errorf("%w: top_k must be between 1 and %d", domain.ErrInvalidQuery, MaxTopK)
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return Query{}, fmt.Errorf("%w: threshold must be between 0 and 1", domain.ErrInvalidQuery)
	}

	id, err := identity.Canonicalize(userID)
	if err != nil {
		return Query{}, err //nolint:wrapcheck // already carries ErrInvalidIdentity context
	}

	return Query{text: norm, topK: topK, threshold: threshold, userID: id}, nil
}

// NormalizeText trims the text and collapses internal whitespace.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Text returns the normalized query text.
func (q *Query) Text() string { return q.text }

// TopK returns the maximum number of results.
func (q *Query) TopK() int { return q.topK }

// Threshold returns the inclusive minimum similarity score.
func (q *Query) Threshold() float64 { return q.threshold }

// UserID returns the canonical caller identity.
func (q *Query) UserID() string { return q.userID }
