package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/logger"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 2 * time.Second

// Status is the aggregated readiness.
type Status string

const (
	// Ready indicates every component answered.
	Ready Status = "ok"
	// Degraded indicates at least one component failed.
	Degraded Status = "degraded"
)

// CheckResult is the outcome of one component check.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Component names used in Report.Checks.
const (
	ComponentStore     = "store"
	ComponentEmbedding = "embedding"
)

// Report aggregates check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// OK reports whether every check passed.
func (r Report) OK() bool { return r.Status == Ready }

type check struct {
	name string
	fn   func(ctx context.Context) error
}

// Service runs readiness checks.
type Service struct {
	checks  []check
	timeout time.Duration
}

// New creates a Service. embedding may be nil.
func New(store StorePinger, embedding EmbeddingChecker, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Service{timeout: timeout}
	s.checks = append(s.checks, check{name: ComponentStore, fn: store.Ping})
	if embedding != nil {
		s.checks = append(s.checks, check{name: ComponentEmbedding, fn: embedding.HealthCheck})
	}
	return s
}

// Check runs all component checks in parallel.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := logger.FromContext(ctx)
	results := make([]CheckResult, len(s.checks))

	var wg sync.WaitGroup
	for i, c := range s.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.fn(ctx); err != nil {
				log.Warn("Readiness check failed", zap.String("component", c.name), zap.Error(err))
				results[i] = CheckError
				return
			}
			results[i] = CheckOK
		}()
	}
	wg.Wait()

	report := Report{Status: Ready, Checks: make(map[string]CheckResult, len(s.checks))}
	for i, c := range s.checks {
		report.Checks[c.name] = results[i]
		if results[i] == CheckError {
			report.Status = Degraded
		}
	}
	return report
}
