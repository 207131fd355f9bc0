// Package identity canonicalizes caller identifiers used as rate-limit partition keys.
package identity

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// MaxLength is the longest accepted identifier.
const MaxLength = 128

// Canonicalize returns the canonical form of a user identifier:
// surrounding whitespace trimmed, 1..MaxLength characters from [A-Za-z0-9._@:-].
// Case is preserved; "Alice" and "alice" are different identities.
func Canonicalize(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%w: user_id is required", domain.ErrInvalidIdentity)
	}
	if len(id) > MaxLength {
		return "", fmt.Errorf("%w: user_id longer than %d characters", domain.ErrInvalidIdentity, MaxLength)
	}
	for _, r := range id {
		if !isAllowed(r) {
			return "", fmt.Errorf("%w: user_id contains %q", domain.ErrInvalidIdentity, r)
		}
	}
	return id, nil
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '@', r == ':', r == '-':
		return true
	}
	return false
}
