package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// errorHandlers maps domain errors to responses, first match wins.
var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
	sentinelHandler(domain.ErrInvalidIdentity, http.StatusBadRequest, codeInvalidIdentity),
	sentinelHandler(domain.ErrRateLimitExceeded, http.StatusTooManyRequests, codeRateLimited),
	sentinelHandler(domain.ErrRateLimiterUnavailable, http.StatusInternalServerError, codeLimiterUnavailable),
	searchFailureHandler,
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidIdentity,
		domain.ErrRateLimitExceeded,
		domain.ErrRateLimiterUnavailable,
		domain.ErrSearchOperationFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// validationMessage keeps the detail of validation errors; they describe the input, not internals.
func validationMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) || errors.Is(err, domain.ErrInvalidIdentity) {
		return err.Error()
	}
	return safeDomainMessage(err)
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// searchFailureHandler reports search failures with the retryable flag.
func searchFailureHandler(w http.ResponseWriter, err error, msg string) bool {
	var soe *domain.SearchOperationError
	if !errors.As(err, &soe) {
		return false
	}
	retryable := soe.Retryable
	if retryable {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Code:      codeSearchFailed,
		Message:   msg,
		Retryable: &retryable,
	})
	return true
}

func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := validationMessage(err)
	for _, h := range errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
