// Package chi is the HTTP transport: routing, request decoding and error mapping.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	"github.com/kailas-cloud/docsearch/internal/usecase/pipeline"
	"github.com/kailas-cloud/docsearch/internal/usecase/ratelimit"
)

// maxBodyBytes bounds the POST /search body.
const maxBodyBytes = 64 << 10

// Searcher runs one search request.
type Searcher interface {
	Search(ctx context.Context, q query.Query) (pipeline.Response, error)
}

// ReadinessChecker reports collaborator health.
type ReadinessChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	search Searcher
	ready  ReadinessChecker
}

// NewServer creates an HTTP API server. ready may be nil.
func NewServer(search Searcher, ready ReadinessChecker) *Server {
	return &Server{search: search, ready: ready}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router(logger *zap.Logger, apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Post("/search", s.Search)
	r.Get("/health", s.Health)
	r.Get("/ready", s.Ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// Search handles POST /search. Inference time is measured from handler entry.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	received := time.Now()
	q, err := decodeSearchRequest(r)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) || errors.Is(err, domain.ErrInvalidIdentity) {
			handleDomainError(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(pipeline.ContextWithReceivedAt(r.Context(), received))
	resp, err := s.search.Search(ctx, q)
	setQuotaHeaders(w, resp.Quota)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromPipeline(&resp))
}

// Health handles GET /health. It never touches a collaborator.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "healthy"})
}

// Ready handles GET /ready.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if s.ready == nil {
		writeJSON(w, http.StatusOK, readyResponse{Status: string(healthuc.Ready), Checks: map[string]string{}})
		return
	}

	report := s.ready.Check(r.Context())
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if !report.OK() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, readyResponse{Status: string(report.Status), Checks: checks})
}

func decodeSearchRequest(r *http.Request) (query.Query, error) {
	var req searchRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return query.Query{}, fmt.Errorf("decode: %w", err)
	}

	switch {
	case req.Text == nil:
		return query.Query{}, fmt.Errorf("%w: text is required", domain.ErrInvalidQuery)
	case req.TopK == nil:
		return query.Query{}, fmt.Errorf("%w: top_k is required", domain.ErrInvalidQuery)
	case req.Threshold == nil:
		return query.Query{}, fmt.Errorf("%w: threshold is required", domain.ErrInvalidQuery)
	case req.UserID == nil:
		return query.Query{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidIdentity)
	}

	return query.New(*req.Text, *req.TopK, *req.Threshold, *req.UserID) //nolint:wrapcheck // domain validation errors
}

func setQuotaHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	if d.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining(), 10))
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if tokens, used := usage.Snapshot(); used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(tokens))
	}
}
