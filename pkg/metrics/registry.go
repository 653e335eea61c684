// Package metrics provides Prometheus metrics collection for DittoVFD drivers.
//
// All metrics are optional. If the registry is not initialized, constructors
// return nil and drivers fall back to their built-in no-op implementation, so
// a process can run with or without metrics collection.
//
// Usage:
//
//	// Initialize global registry (typically in main.go)
//	metrics.InitRegistry()
//
//	// Create a metrics instance per driver
//	drv, _ := vfd.NewDriver(backend, vfd.Options{
//	    Metrics: metrics.NewVFDMetrics("s3-main"),
//	})
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is the global Prometheus registry for all DittoVFD metrics.
	// Written once by InitRegistry.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// It must be called before creating any metrics instances. Subsequent calls
// are ignored.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry, or nil when metrics
// are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}
