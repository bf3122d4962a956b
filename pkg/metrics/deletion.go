package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/foliocms/folio/pkg/tenant/deletion"
)

// deletionMetrics is the Prometheus implementation of the deletion.Metrics
// interface, recording cascading tenant-deletion runs.
type deletionMetrics struct {
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
}

// NewDeletionMetrics creates a Prometheus-backed deletion.Metrics instance.
//
// Returns nil if metrics are not enabled, which causes the orchestrator to
// use its built-in no-op implementation.
func NewDeletionMetrics() deletion.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &deletionMetrics{
		runsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_tenant_deletions_total",
				Help: "Total number of tenant deletion runs by outcome",
			},
			[]string{"outcome"}, // success or partial
		),
		runDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "folio_tenant_deletion_duration_seconds",
				Help: "Duration of full tenant deletion runs in seconds",
				Buckets: []float64{
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					5.0,   // 5s
					15.0,  // 15s
					60.0,  // 1min
					300.0, // 5min (large tenants)
				},
			},
		),
	}
}

// ObserveRun implements deletion.Metrics.ObserveRun
func (m *deletionMetrics) ObserveRun(duration time.Duration, partial bool) {
	outcome := "success"
	if partial {
		outcome = "partial"
	}

	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
}
