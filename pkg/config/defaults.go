package config

import (
	"slices"
	"strings"
	"time"

	"github.com/marmos91/dittovfd/pkg/metrics"
	"github.com/marmos91/dittovfd/pkg/store/object/s3"
	"github.com/marmos91/dittovfd/pkg/vfd"
)

// DefaultDriverName names the driver created when none is configured.
const DefaultDriverName = vfd.DefaultDriverName

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced; explicit values are preserved. Backend-specific
// option maps are left to the factories, except for the sample values that
// GetDefaultConfig writes out.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applyRetryDefaults(&cfg.Retry)
	applyS3Defaults(&cfg.S3)

	if len(cfg.Drivers) == 0 {
		cfg.Drivers = map[string]DriverConfig{
			DefaultDriverName: {Type: "s3"},
		}
	}
	for name, drv := range cfg.Drivers {
		applyDriverDefaults(&drv)
		cfg.Drivers[name] = drv
	}

	if cfg.DefaultDriver == "" {
		cfg.DefaultDriver = pickDefaultDriver(cfg.Drivers)
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	// stdout carries object bytes for the read command
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = metrics.DefaultPort
	}
}

func applyRetryDefaults(cfg *RetryConfig) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 2 * time.Second
	}
}

func applyS3Defaults(cfg *S3Config) {
	if cfg.Region == "" {
		cfg.Region = s3.DefaultRegion
	}
	if cfg.Protocol == "" {
		cfg.Protocol = s3.ProtocolHTTPS
	}
	cfg.Protocol = strings.ToLower(cfg.Protocol)
	cfg.URIStyle = strings.ToLower(cfg.URIStyle)
}

func applyDriverDefaults(cfg *DriverConfig) {
	if cfg.Type == "" {
		cfg.Type = "s3"
	}
	if cfg.OnProbeError == "" {
		cfg.OnProbeError = string(vfd.ProbeErrorZeroSize)
	}
}

// pickDefaultDriver prefers the conventional name, then the first name in
// sorted order.
func pickDefaultDriver(drivers map[string]DriverConfig) string {
	if _, ok := drivers[DefaultDriverName]; ok {
		return DefaultDriverName
	}
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	slices.Sort(names)
	return names[0]
}

// GetDefaultConfig returns a Config with all default values applied.
//
// Used to generate sample configuration files and in tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Drivers: map[string]DriverConfig{
			DefaultDriverName: {
				Type: "s3",
				S3:   map[string]any{},
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
