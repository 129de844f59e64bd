// Package metrics exposes repository statement metrics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RepositoryMetrics records the duration and outcome of repository
// statements. It satisfies sqlstore.Observer.
type RepositoryMetrics struct {
	duration *prometheus.HistogramVec
}

// NewRepositoryMetrics registers the repository histogram on reg.
func NewRepositoryMetrics(reg prometheus.Registerer) (*RepositoryMetrics, error) {
	m := &RepositoryMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "repository_operation_duration_seconds",
				Help:    "Duration of repository statements by operation, entity and outcome.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "entity", "status"},
		),
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *RepositoryMetrics) ObserveQuery(_ context.Context, operation, entity, _ string, duration time.Duration, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "canceled"
	default:
		status = "error"
	}
	m.duration.WithLabelValues(operation, entity, status).Observe(duration.Seconds())
}
