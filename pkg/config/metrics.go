package config

import (
	"github.com/marmos91/dittovfd/pkg/metrics"
)

// MetricsResult contains the metrics components created from configuration.
type MetricsResult struct {
	// Server exposes Prometheus metrics (nil if disabled)
	Server *metrics.Server
}

// InitializeMetrics initializes the global Prometheus registry and creates
// the metrics HTTP server when metrics are enabled.
//
// When disabled it returns a result with a nil server and drivers fall back
// to no-op metrics.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server: metrics.NewServer(metrics.ServerConfig{
			Port: cfg.Metrics.Port,
		}),
	}
}
