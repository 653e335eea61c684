package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolateEnv keeps the developer's environment out of Load.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for key, legacy := range envBindings {
		t.Setenv("DITTOVFD_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), "")
		for _, name := range legacy {
			t.Setenv(name, "")
		}
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_MinimalConfig(t *testing.T) {
	isolateEnv(t)

	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "info"

drivers:
  scratch:
    type: "memory"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected normalized level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("Expected default max_attempts 5, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.MaxBackoff != 2*time.Second {
		t.Errorf("Expected default max_backoff 2s, got %v", cfg.Retry.MaxBackoff)
	}
	if len(cfg.Drivers) != 1 {
		t.Fatalf("Expected 1 driver, got %d", len(cfg.Drivers))
	}
	if cfg.DefaultDriver != "scratch" {
		t.Errorf("Expected default driver 'scratch', got %q", cfg.DefaultDriver)
	}
	if cfg.Drivers["scratch"].OnProbeError != "zero_size" {
		t.Errorf("Expected default probe policy 'zero_size', got %q", cfg.Drivers["scratch"].OnProbeError)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	if cfg.DefaultDriver != DefaultDriverName {
		t.Errorf("Expected default driver %q, got %q", DefaultDriverName, cfg.DefaultDriver)
	}
	if cfg.Drivers[DefaultDriverName].Type != "s3" {
		t.Errorf("Expected default driver type 's3', got %q", cfg.Drivers[DefaultDriverName].Type)
	}
	if cfg.S3.Region != "us-east-1" {
		t.Errorf("Expected default region 'us-east-1', got %q", cfg.S3.Region)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolateEnv(t)

	configPath := writeConfig(t, "invalid.yaml", `
logging:
  level: INFO
  invalid yaml here [[[
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	isolateEnv(t)

	configPath := writeConfig(t, "config.toml", `
default_driver = "local"

[logging]
level = "WARN"
format = "json"

[drivers.local]
type = "filesystem"
on_probe_error = "fail_open"

[drivers.local.filesystem]
path = "/srv/objects"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	local := cfg.Drivers["local"]
	if local.OnProbeError != "fail_open" {
		t.Errorf("Expected on_probe_error 'fail_open', got %q", local.OnProbeError)
	}
	if local.Filesystem["path"] != "/srv/objects" {
		t.Errorf("Expected filesystem path '/srv/objects', got %v", local.Filesystem["path"])
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DITTOVFD_LOGGING_LEVEL", "debug")
	t.Setenv("DITTOVFD_RETRY_MAX_ATTEMPTS", "3")
	t.Setenv("DITTOVFD_RETRY_MAX_BACKOFF", "500ms")

	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "ERROR"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected env level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Expected env max_attempts 3, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.MaxBackoff != 500*time.Millisecond {
		t.Errorf("Expected env max_backoff 500ms, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoad_LegacyS3Environment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("S3_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_HOSTNAME", "localhost:9000")
	t.Setenv("S3_PROTOCOL", "HTTP")
	t.Setenv("S3_URI_STYLE", "path")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.S3.AccessKeyID != "AKIAEXAMPLE" {
		t.Errorf("Expected access key from S3_ACCESS_KEY_ID, got %q", cfg.S3.AccessKeyID)
	}
	if cfg.S3.SecretAccessKey != "secret" {
		t.Errorf("Expected secret from S3_SECRET_ACCESS_KEY, got %q", cfg.S3.SecretAccessKey)
	}
	if cfg.S3.Endpoint != "localhost:9000" {
		t.Errorf("Expected endpoint from S3_HOSTNAME, got %q", cfg.S3.Endpoint)
	}
	if cfg.S3.Protocol != "http" {
		t.Errorf("Expected normalized protocol 'http', got %q", cfg.S3.Protocol)
	}
	if cfg.S3.URIStyle != "path" {
		t.Errorf("Expected uri style 'path', got %q", cfg.S3.URIStyle)
	}
}

func TestLoad_PrefixedEnvironmentWins(t *testing.T) {
	isolateEnv(t)
	t.Setenv("S3_HOSTNAME", "legacy:9000")
	t.Setenv("DITTOVFD_S3_ENDPOINT", "preferred:9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.S3.Endpoint != "preferred:9000" {
		t.Errorf("Expected DITTOVFD_S3_ENDPOINT to win, got %q", cfg.S3.Endpoint)
	}
}

func TestLoad_InvalidProtocol(t *testing.T) {
	isolateEnv(t)
	t.Setenv("S3_PROTOCOL", "ftp")

	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("Expected validation error for protocol 'ftp'")
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	want := filepath.Join(dir, "dittovfd", "config.yaml")
	if got := GetDefaultConfigPath(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if GetConfigDir() != filepath.Join(dir, "dittovfd") {
		t.Errorf("Unexpected config dir %q", GetConfigDir())
	}
	if ConfigExists() {
		t.Error("Expected no config in a fresh directory")
	}
}
