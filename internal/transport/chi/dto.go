package chi

import (
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/usecase/pipeline"
)

// searchRequest is the POST /search body. Every field is required.
type searchRequest struct {
	Text      *string  `json:"text"`
	TopK      *int     `json:"top_k"`
	Threshold *float64 `json:"threshold"`
	UserID    *string  `json:"user_id"`
}

type searchResultItem struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Content string  `json:"content,omitempty"`
}

type searchResponse struct {
	Query         string             `json:"query"`
	Results       []searchResultItem `json:"results"`
	TotalResults  int                `json:"total_results"`
	InferenceTime float64            `json:"inference_time"` // seconds
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable *bool  `json:"retryable,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Error codes.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeInvalidIdentity    = "invalid_identity"
	codeUnauthorized       = "unauthorized"
	codeRateLimited        = "rate_limited"
	codeLimiterUnavailable = "rate_limiter_unavailable"
	codeSearchFailed       = "search_failed"
	codeNotFound           = "not_found"
	codeMethodNotAllowed   = "method_not_allowed"
	codeInternalError      = "internal_error"
)

func searchResponseFromPipeline(resp *pipeline.Response) searchResponse {
	items := make([]searchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = resultToItem(&resp.Results[i])
	}
	return searchResponse{
		Query:         resp.Query,
		Results:       items,
		TotalResults:  resp.TotalResults(),
		InferenceTime: resp.InferenceTime.Seconds(),
	}
}

func resultToItem(r *result.Result) searchResultItem {
	return searchResultItem{
		ID:      r.ID(),
		Title:   r.Title(),
		URL:     r.URL(),
		Score:   r.Score(),
		Content: r.Content(),
	}
}
