package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	// PipelineOutcomesTotal counts finished requests: "cache_hit" and "searched" on success,
	// otherwise the failure reason ("rate_limit_exceeded", "rate_limiter_unavailable",
	// "search_operation_failed", "invalid_query", "canceled").
	PipelineOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_outcomes_total",
			Help:      "Search pipeline outcomes by terminal state",
		},
		[]string{"outcome"},
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Search pipeline duration from entry to response construction",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"path"}, // "hit" / "miss"
	)

	// RateLimitDecisionsTotal counts admission decisions ("allowed", "rejected", "unavailable").
	RateLimitDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_decisions_total",
			Help:      "Rate limiter admission decisions",
		},
		[]string{"decision"},
	)

	// QueryCacheTotal counts query cache lookups ("hit", "miss", "unavailable").
	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Query result cache lookups",
		},
		[]string{"result"},
	)

	QueryCacheStoreFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_store_failures_total",
			Help:      "Failed writes to the query result cache",
		},
	)

	ContentResolutionFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_resolution_failures_total",
			Help:      "Search results dropped because their content could not be resolved",
		},
	)

	// SearchFailuresTotal counts vector search failures by cause ("encoding", "backend").
	SearchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_failures_total",
			Help:      "Vector search failures by cause",
		},
		[]string{"cause", "retryable"},
	)

	// IngestArticlesTotal counts ingestion outcomes per article ("indexed", "invalid", "failed").
	IngestArticlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_articles_total",
			Help:      "Articles processed by the ingestion job",
		},
		[]string{"status"},
	)
)

func pipelineCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		PipelineOutcomesTotal,
		PipelineDuration,
		RateLimitDecisionsTotal,
		QueryCacheTotal,
		QueryCacheStoreFailuresTotal,
		ContentResolutionFailuresTotal,
		SearchFailuresTotal,
		IngestArticlesTotal,
	}
}
