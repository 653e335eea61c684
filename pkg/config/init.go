package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configHeader = `# DittoVFD Configuration File
#
# Read-only virtual file drivers over object storage.
#
# Every key can also be set from the environment with the DITTOVFD_ prefix,
# e.g. DITTOVFD_LOGGING_LEVEL=DEBUG. The s3 section additionally honours
# S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, S3_HOSTNAME, S3_PROTOCOL
# (http|https) and S3_URI_STYLE (path|virtual).
#
# Driver types: s3, filesystem (path), memory (buckets), badger (db_path).
# on_probe_error: zero_size opens unreadable objects with size 0,
# fail_open makes the open fail instead.

`

// InitConfig writes a sample configuration to the default location and
// returns its path. An existing file is only replaced when force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration to path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := generateYAMLConfig(GetDefaultConfig())
	if err != nil {
		return err
	}

	// 0600: the file may end up holding credentials
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func generateYAMLConfig(cfg *Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return append([]byte(configHeader), body...), nil
}
