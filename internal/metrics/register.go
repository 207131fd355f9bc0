package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsearch"

var registerOnce sync.Once

// Register registers all docsearch collectors with the default registry.
// Must be called from main; repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		collectors := []prometheus.Collector{httpRequestDuration, httpRequestsTotal}
		collectors = append(collectors, embeddingCollectors()...)
		collectors = append(collectors, pipelineCollectors()...)
		prometheus.MustRegister(collectors...)
	})
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
