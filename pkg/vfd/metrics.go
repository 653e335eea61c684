package vfd

import "time"

// Metrics provides observability for driver operations.
//
// Implementations can use this interface to collect request counts, latency,
// retries and bytes read. This is optional - if not provided, metrics
// collection is skipped.
type Metrics interface {
	// ObserveRequest records one probe or fetch, including all its retries
	ObserveRequest(op string, status string, attempts int, duration time.Duration)

	// RecordBytes records bytes delivered to callers
	RecordBytes(op string, bytes int64)

	// OpenFiles adjusts the number of open file handles by delta
	OpenFiles(driver string, delta int)
}

// noopMetrics is a default no-op metrics implementation
type noopMetrics struct{}

func (noopMetrics) ObserveRequest(op string, status string, attempts int, duration time.Duration) {}
func (noopMetrics) RecordBytes(op string, bytes int64)                                          {}
func (noopMetrics) OpenFiles(driver string, delta int)                                          {}
