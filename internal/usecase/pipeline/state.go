package pipeline

// State is a step of one pipeline run.
type State string

// Pipeline states. A run ends in StateDone or StateFailed.
const (
	StateReceived         State = "received"
	StateRateLimitChecked State = "rate_limit_checked"
	StateCacheChecked     State = "cache_checked"
	StateCacheHit         State = "cache_hit"
	StateCacheMiss        State = "cache_miss"
	StateSearching        State = "searching"
	StateAssembling       State = "assembling"
	StateCacheStoring     State = "cache_storing"
	StateResponding       State = "responding"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Reason explains a StateFailed run.
type Reason string

// Failure reasons.
const (
	ReasonInvalidQuery           Reason = "invalid_query"
	ReasonRateLimitExceeded      Reason = "rate_limit_exceeded"
	ReasonRateLimiterUnavailable Reason = "rate_limiter_unavailable"
	ReasonSearchOperationFailed  Reason = "search_operation_failed"
	ReasonCanceled               Reason = "canceled"
)
