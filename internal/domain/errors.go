package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentity signals a user identifier that cannot be canonicalized.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrInvalidQuery signals a malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrRateLimitExceeded signals that the identity has used up its quota.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrRateLimiterUnavailable signals that the counter store could not be consulted.
	// Requests are rejected (fail closed).
	ErrRateLimiterUnavailable = errors.New("rate limiter unavailable")

	// ErrCacheUnavailable signals a cache store failure. Callers degrade to a miss.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrEncodingFailed signals that the query text could not be embedded.
	ErrEncodingFailed = errors.New("encoding failed")
	// ErrSearchBackendUnavailable signals that the vector index was unreachable or rejected the query.
	ErrSearchBackendUnavailable = errors.New("search backend unavailable")
	// ErrIndexNotFound signals that the vector index does not exist.
	ErrIndexNotFound = errors.New("vector index not found")
	// ErrSearchRejected signals that the index refused the query (e.g. vector size mismatch).
	ErrSearchRejected = errors.New("search query rejected")
	// ErrSearchOperationFailed is the umbrella for encoding and backend failures.
	ErrSearchOperationFailed = errors.New("search operation failed")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// SearchOperationError carries the cause of a failed search and whether a retry may succeed.
// errors.Is matches ErrSearchOperationFailed, the cause sentinel, and the wrapped error.
type SearchOperationError struct {
	Cause     error // ErrEncodingFailed or ErrSearchBackendUnavailable
	Retryable bool
	Err       error
}

// NewSearchOperationError wraps err with a search failure cause.
func NewSearchOperationError(cause error, retryable bool, err error) *SearchOperationError {
	return &SearchOperationError{Cause: cause, Retryable: retryable, Err: err}
}

func (e *SearchOperationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrSearchOperationFailed.Error(), e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s: %s", ErrSearchOperationFailed.Error(), e.Cause.Error(), e.Err.Error())
}

// Is reports whether target is the umbrella sentinel or the cause.
func (e *SearchOperationError) Is(target error) bool {
	return target == ErrSearchOperationFailed || target == e.Cause
}

func (e *SearchOperationError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a search failure that the caller may retry.
func IsRetryable(err error) bool {
	var soe *SearchOperationError
	if errors.As(err, &soe) {
		return soe.Retryable
	}
	return false
}

// ProviderError is an embedding provider failure with the HTTP status when one was received.
// errors.Is matches ErrEmbeddingProviderError.
type ProviderError struct {
	StatusCode int // 0 when the request never got a response
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("embedding request failed: %s", e.Message)
	}
	return fmt.Sprintf("embedding API error %d: %s", e.StatusCode, e.Message)
}

// Is reports whether target is ErrEmbeddingProviderError.
func (e *ProviderError) Is(target error) bool { return target == ErrEmbeddingProviderError }

func (e *ProviderError) Unwrap() error { return e.Err }

// Temporary reports whether the provider may succeed on retry:
// no response at all, request timeout, throttling, or a server-side error.
func (e *ProviderError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == 408, e.StatusCode == 429:
		return true
	default:
		return e.StatusCode >= 500
	}
}
