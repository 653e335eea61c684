package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/dittovfd/pkg/vfd"
)

// vfdCollectors are shared by every driver; each driver writes with its own
// "driver" label value.
type vfdCollectors struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	attempts        *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	bytesRead       *prometheus.CounterVec
	openFiles       *prometheus.GaugeVec
}

var (
	collectors     *vfdCollectors
	collectorsOnce sync.Once
)

func getCollectors() *vfdCollectors {
	collectorsOnce.Do(func() {
		reg := GetRegistry()

		collectors = &vfdCollectors{
			requestsTotal: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "dittovfd_requests_total",
					Help: "Total number of probe and fetch requests by final status",
				},
				[]string{"driver", "operation", "status"},
			),
			requestDuration: promauto.With(reg).NewHistogramVec(
				prometheus.HistogramOpts{
					Name: "dittovfd_request_duration_seconds",
					Help: "Duration of probe and fetch requests in seconds, retries included",
					Buckets: []float64{
						0.005, // 5ms
						0.01,  // 10ms
						0.025, // 25ms
						0.05,  // 50ms
						0.1,   // 100ms
						0.25,  // 250ms
						0.5,   // 500ms
						1.0,   // 1s
						2.5,   // 2.5s
						5.0,   // 5s
						10.0,  // 10s
					},
				},
				[]string{"driver", "operation"},
			),
			attempts: promauto.With(reg).NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "dittovfd_request_attempts",
					Help:    "Number of attempts needed per request",
					Buckets: []float64{1, 2, 3, 5, 8, 13},
				},
				[]string{"driver", "operation"},
			),
			retriesTotal: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "dittovfd_retries_total",
					Help: "Total number of retried attempts",
				},
				[]string{"driver", "operation"},
			),
			bytesRead: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "dittovfd_bytes_read_total",
					Help: "Total bytes delivered to callers",
				},
				[]string{"driver", "operation"},
			),
			openFiles: promauto.With(reg).NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "dittovfd_open_files",
					Help: "Number of open file handles",
				},
				[]string{"driver"},
			),
		}
	})
	return collectors
}

// vfdMetrics is the Prometheus implementation of vfd.Metrics.
type vfdMetrics struct {
	driver string
	c      *vfdCollectors
}

// NewVFDMetrics creates a Prometheus-backed vfd.Metrics for one driver.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// makes the driver use its no-op implementation.
func NewVFDMetrics(driver string) vfd.Metrics {
	if !IsEnabled() {
		return nil
	}
	return &vfdMetrics{driver: driver, c: getCollectors()}
}

func (m *vfdMetrics) ObserveRequest(op string, status string, attempts int, duration time.Duration) {
	m.c.requestsTotal.WithLabelValues(m.driver, op, status).Inc()
	m.c.requestDuration.WithLabelValues(m.driver, op).Observe(duration.Seconds())
	m.c.attempts.WithLabelValues(m.driver, op).Observe(float64(attempts))
	if attempts > 1 {
		m.c.retriesTotal.WithLabelValues(m.driver, op).Add(float64(attempts - 1))
	}
}

func (m *vfdMetrics) RecordBytes(op string, bytes int64) {
	if bytes > 0 {
		m.c.bytesRead.WithLabelValues(m.driver, op).Add(float64(bytes))
	}
}

func (m *vfdMetrics) OpenFiles(driver string, delta int) {
	m.c.openFiles.WithLabelValues(driver).Add(float64(delta))
}
