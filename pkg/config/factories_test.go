package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittovfd/pkg/store/object"
	objectbadger "github.com/marmos91/dittovfd/pkg/store/object/badger"
	objectfs "github.com/marmos91/dittovfd/pkg/store/object/fs"
	objectmemory "github.com/marmos91/dittovfd/pkg/store/object/memory"
	objects3 "github.com/marmos91/dittovfd/pkg/store/object/s3"
	"github.com/marmos91/dittovfd/pkg/vfd"
)

func TestCreateBackend_Filesystem(t *testing.T) {
	backend, err := CreateBackend(context.Background(), DriverConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{"path": t.TempDir()},
	}, S3Config{})
	require.NoError(t, err)
	defer backend.Close()

	assert.IsType(t, &objectfs.Store{}, backend)
}

func TestCreateBackend_FilesystemMissingPath(t *testing.T) {
	_, err := CreateBackend(context.Background(), DriverConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{},
	}, S3Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestCreateBackend_Memory(t *testing.T) {
	backend, err := CreateBackend(context.Background(), DriverConfig{
		Type:   "memory",
		Memory: map[string]any{"buckets": []any{"mybucket"}},
	}, S3Config{})
	require.NoError(t, err)
	require.IsType(t, &objectmemory.Store{}, backend)

	_, out := backend.Stat(context.Background(), "mybucket", "absent")
	assert.Equal(t, object.StatusNotFound, out.Status)
}

func TestCreateBackend_Badger(t *testing.T) {
	backend, err := CreateBackend(context.Background(), DriverConfig{
		Type: "badger",
		Badger: map[string]any{
			"db_path":        filepath.Join(t.TempDir(), "objects"),
			"block_cache_mb": "16",
		},
	}, S3Config{})
	require.NoError(t, err)
	defer backend.Close()

	assert.IsType(t, &objectbadger.Store{}, backend)
}

func TestCreateBackend_BadgerMissingPath(t *testing.T) {
	_, err := CreateBackend(context.Background(), DriverConfig{Type: "badger"}, S3Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_path is required")
}

func TestCreateBackend_S3RequiresCredentials(t *testing.T) {
	_, err := CreateBackend(context.Background(), DriverConfig{Type: "s3"}, S3Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, objects3.ErrMissingCredentials)
}

func TestCreateBackend_S3(t *testing.T) {
	backend, err := CreateBackend(context.Background(), DriverConfig{Type: "s3"}, S3Config{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		Endpoint:        "localhost:9000",
		Protocol:        "http",
	})
	require.NoError(t, err)
	assert.IsType(t, &objects3.Store{}, backend)
}

func TestCreateBackend_UnknownType(t *testing.T) {
	_, err := CreateBackend(context.Background(), DriverConfig{Type: "gcs"}, S3Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend type")
}

func TestResolveS3Config_Overrides(t *testing.T) {
	defaults := S3Config{
		AccessKeyID:     "global-key",
		SecretAccessKey: "global-secret",
		Endpoint:        "global:9000",
		Region:          "us-east-1",
		Protocol:        "https",
	}

	got, err := resolveS3Config(map[string]any{
		"endpoint":  "minio:9000",
		"protocol":  "http",
		"uri_style": "virtual",
	}, defaults)
	require.NoError(t, err)

	assert.Equal(t, "global-key", got.AccessKeyID)
	assert.Equal(t, "global-secret", got.SecretAccessKey)
	assert.Equal(t, "minio:9000", got.Endpoint)
	assert.Equal(t, "http", got.Protocol)
	assert.Equal(t, "virtual", got.URIStyle)
	assert.Equal(t, "us-east-1", got.Region)

	unchanged, err := resolveS3Config(nil, defaults)
	require.NoError(t, err)
	assert.Equal(t, "global:9000", unchanged.Endpoint)
}

func TestCreateDriver(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Retry.MaxAttempts = 2

	drv, err := CreateDriver(context.Background(), "scratch", DriverConfig{
		Type:         "memory",
		OnProbeError: "fail_open",
		RateLimit:    RateLimitConfig{RequestsPerSecond: 100},
	}, cfg)
	require.NoError(t, err)
	defer drv.Close()

	assert.Equal(t, "scratch", drv.Name())
	assert.Equal(t, vfd.ProbeErrorFailOpen, drv.ProbeErrorPolicy())
	assert.Equal(t, vfd.InvalidDriverID, drv.ID(), "not registered yet")
}

func TestCreateDriver_BackendError(t *testing.T) {
	_, err := CreateDriver(context.Background(), "bad", DriverConfig{Type: "filesystem"}, GetDefaultConfig())
	assert.Error(t, err)
}
