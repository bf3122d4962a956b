package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/foliocms/folio/pkg/storage"
)

// storageMetrics is the Prometheus implementation of the storage.Metrics
// interface, recording the folder-level operations (list, upload, move,
// folder rename) that sit above the raw object store.
type storageMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewStorageMetrics creates a Prometheus-backed storage.Metrics instance.
//
// Returns nil if metrics are not enabled, which causes the storage manager
// to use its built-in no-op implementation.
func NewStorageMetrics() storage.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &storageMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_storage_operations_total",
				Help: "Total number of storage manager operations by operation type and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "folio_storage_operation_duration_seconds",
				Help: "Duration of storage manager operations in seconds",
				Buckets: []float64{
					0.01, // 10ms
					0.05, // 50ms
					0.1,  // 100ms
					0.5,  // 500ms
					1.0,  // 1s
					5.0,  // 5s (large folder moves)
					15.0, // 15s
					60.0, // 1min
				},
			},
			[]string{"operation"},
		),
	}
}

// ObserveOperation implements storage.Metrics.ObserveOperation
func (m *storageMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
