package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete DittoVFD configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DITTOVFD_*, plus the legacy S3_* connection
//     variables)
//  2. Configuration file (YAML or TOML)
//  3. Default values
//
// Backend Configuration Pattern:
// Each driver names a backend type and carries a type-specific options map
// (e.g. drivers.main.s3, drivers.scratch.filesystem). Only the map matching
// the selected type is decoded, by the factory for that type.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics controls Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Retry bounds how often transient probe and fetch failures are retried
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`

	// S3 holds the process-wide connection settings. Every s3 driver starts
	// from these and may override single fields in its own options map.
	S3 S3Config `mapstructure:"s3" yaml:"s3"`

	// Drivers maps driver names to their configuration
	Drivers map[string]DriverConfig `mapstructure:"drivers" yaml:"drivers" validate:"dive"`

	// DefaultDriver selects the driver used when none is named
	DefaultDriver string `mapstructure:"default_driver" yaml:"default_driver"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// MetricsConfig controls the Prometheus registry and its HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port of the /metrics HTTP server
	Port int `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// RetryConfig bounds retries of transient failures.
type RetryConfig struct {
	// MaxAttempts includes the first attempt
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts" validate:"required,min=1,max=100"`

	// MaxBackoff caps a single exponential jitter wait
	MaxBackoff time.Duration `mapstructure:"max_backoff" yaml:"max_backoff" validate:"required,gt=0"`
}

// S3Config holds S3 connection settings.
type S3Config struct {
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`

	// Endpoint is a host name or URL; empty selects AWS
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	Region string `mapstructure:"region" yaml:"region"`

	// Protocol is http or https
	Protocol string `mapstructure:"protocol" yaml:"protocol" validate:"omitempty,oneof=http https"`

	// URIStyle is path or virtual; empty picks path-style for custom endpoints
	URIStyle string `mapstructure:"uri_style" yaml:"uri_style" validate:"omitempty,oneof=path virtual"`
}

// DriverConfig configures one virtual file driver and its backend.
type DriverConfig struct {
	// Type selects the backend implementation
	// Valid values: s3, filesystem, memory, badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=s3 filesystem memory badger"`

	// OnProbeError chooses what Open does when the size probe fails
	// Valid values: zero_size, fail_open
	OnProbeError string `mapstructure:"on_probe_error" yaml:"on_probe_error" validate:"omitempty,oneof=zero_size fail_open"`

	// RateLimit paces requests sent to the backend
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`

	// S3 overrides the process-wide s3 section. Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3" yaml:"s3,omitempty"`

	// Filesystem options. Only used when Type = "filesystem"
	Filesystem map[string]any `mapstructure:"filesystem" yaml:"filesystem,omitempty"`

	// Memory options. Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory,omitempty"`

	// Badger options. Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger,omitempty"`
}

// RateLimitConfig configures the token bucket in front of a backend.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate; 0 disables limiting
	RequestsPerSecond uint `mapstructure:"requests_per_second" yaml:"requests_per_second"`

	// Burst defaults to RequestsPerSecond
	Burst uint `mapstructure:"burst" yaml:"burst"`
}

// envBindings lists the keys that can be set from the environment without a
// config file, with any extra variable names accepted for them.
var envBindings = map[string][]string{
	"logging.level":        nil,
	"logging.format":       nil,
	"logging.output":       nil,
	"metrics.enabled":      nil,
	"metrics.port":         nil,
	"retry.max_attempts":   nil,
	"retry.max_backoff":    nil,
	"default_driver":       nil,
	"s3.access_key_id":     {"S3_ACCESS_KEY_ID"},
	"s3.secret_access_key": {"S3_SECRET_ACCESS_KEY"},
	"s3.endpoint":          {"S3_HOSTNAME"},
	"s3.protocol":          {"S3_PROTOCOL"},
	"s3.uri_style":         {"S3_URI_STYLE"},
	"s3.region":            {"S3_REGION"},
}

// Load loads configuration from file, environment, and defaults.
//
// An empty configPath searches the default location; a missing file is not
// an error. The returned configuration has defaults applied and is
// validated.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if err := setupViper(v, configPath); err != nil {
		return nil, err
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) error {
	// DITTOVFD_LOGGING_LEVEL=DEBUG sets logging.level
	v.SetEnvPrefix("DITTOVFD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range envBindings {
		names := append([]string{"DITTOVFD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, legacy...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// $XDG_CONFIG_HOME/dittovfd/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	return nil
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to read config file: %w", err)
}

// getConfigDir returns $XDG_CONFIG_HOME/dittovfd, ~/.config/dittovfd, or "."
// when no home directory is known.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittovfd")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittovfd")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
