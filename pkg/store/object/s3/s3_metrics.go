package s3

import "time"

// Metrics receives observations about S3 operations.
//
// The store calls ObserveOperation once per API call with the operation name,
// elapsed time, and the error (nil on success). A Prometheus-backed
// implementation lives in pkg/metrics; passing nil to the store config
// selects the built-in no-op.
type Metrics interface {
	ObserveOperation(operation string, duration time.Duration, err error)
}

// noopMetrics discards all observations with zero overhead.
type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, time.Duration, error) {}
