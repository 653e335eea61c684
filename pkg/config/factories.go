package config

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/dittovfd/internal/logger"
	"github.com/marmos91/dittovfd/internal/ratelimiter"
	"github.com/marmos91/dittovfd/internal/retry"
	"github.com/marmos91/dittovfd/pkg/metrics"
	"github.com/marmos91/dittovfd/pkg/store/object"
	objectbadger "github.com/marmos91/dittovfd/pkg/store/object/badger"
	objectfs "github.com/marmos91/dittovfd/pkg/store/object/fs"
	objectmemory "github.com/marmos91/dittovfd/pkg/store/object/memory"
	objects3 "github.com/marmos91/dittovfd/pkg/store/object/s3"
	"github.com/marmos91/dittovfd/pkg/vfd"
)

// CreateBackend creates the object backend selected by cfg.Type.
//
// Supported types:
//   - "s3": Amazon S3 or a compatible service, via aws-sdk-go-v2
//   - "filesystem": a directory tree, one subdirectory per bucket
//   - "memory": in-process maps, for tests and scratch use
//   - "badger": an embedded BadgerDB database
//
// s3Defaults supplies the connection settings an s3 driver does not
// override.
func CreateBackend(ctx context.Context, cfg DriverConfig, s3Defaults S3Config) (object.Backend, error) {
	switch cfg.Type {
	case "s3":
		return createS3Backend(ctx, cfg.S3, s3Defaults)
	case "filesystem":
		return createFilesystemBackend(ctx, cfg.Filesystem)
	case "memory":
		return createMemoryBackend(ctx, cfg.Memory)
	case "badger":
		return createBadgerBackend(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown backend type: %q", cfg.Type)
	}
}

// resolveS3Config overlays a driver's s3 options onto the process-wide
// settings.
func resolveS3Config(options map[string]any, defaults S3Config) (objects3.ClientConfig, error) {
	overrides := defaults
	if err := mapstructure.Decode(options, &overrides); err != nil {
		return objects3.ClientConfig{}, fmt.Errorf("invalid s3 config: %w", err)
	}

	return objects3.ClientConfig{
		AccessKeyID:     overrides.AccessKeyID,
		SecretAccessKey: overrides.SecretAccessKey,
		Region:          overrides.Region,
		Endpoint:        overrides.Endpoint,
		Protocol:        overrides.Protocol,
		URIStyle:        overrides.URIStyle,
	}, nil
}

func createS3Backend(ctx context.Context, options map[string]any, defaults S3Config) (object.Backend, error) {
	clientCfg, err := resolveS3Config(options, defaults)
	if err != nil {
		return nil, err
	}

	client, err := objects3.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	logger.Debug("S3 backend initialized: endpoint=%q region=%s path_style=%v",
		clientCfg.EndpointURL(), clientCfg.Region, clientCfg.PathStyle())

	store, err := objects3.New(client)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func createFilesystemBackend(ctx context.Context, options map[string]any) (object.Backend, error) {
	var fsCfg struct {
		Path string `mapstructure:"path"`
	}
	if err := mapstructure.Decode(options, &fsCfg); err != nil {
		return nil, fmt.Errorf("invalid filesystem config: %w", err)
	}

	if fsCfg.Path == "" {
		return nil, fmt.Errorf("filesystem path is required")
	}

	store, err := objectfs.New(ctx, fsCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filesystem backend: %w", err)
	}
	return store, nil
}

func createMemoryBackend(ctx context.Context, options map[string]any) (object.Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var memCfg struct {
		// Buckets are created empty at startup
		Buckets []string `mapstructure:"buckets"`
	}
	if err := mapstructure.Decode(options, &memCfg); err != nil {
		return nil, fmt.Errorf("invalid memory config: %w", err)
	}

	store := objectmemory.New()
	for _, bucket := range memCfg.Buckets {
		store.CreateBucket(bucket)
	}
	return store, nil
}

func createBadgerBackend(ctx context.Context, options map[string]any) (object.Backend, error) {
	var badgerCfg struct {
		DBPath           string `mapstructure:"db_path"`
		InMemory         bool   `mapstructure:"in_memory"`
		BlockCacheSizeMB int64  `mapstructure:"block_cache_mb"`
		IndexCacheSizeMB int64  `mapstructure:"index_cache_mb"`
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &badgerCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("invalid badger config: %w", err)
	}

	if badgerCfg.DBPath == "" && !badgerCfg.InMemory {
		return nil, fmt.Errorf("badger db_path is required")
	}

	store, err := objectbadger.New(ctx, objectbadger.Config{
		DBPath:           badgerCfg.DBPath,
		InMemory:         badgerCfg.InMemory,
		BlockCacheSizeMB: badgerCfg.BlockCacheSizeMB,
		IndexCacheSizeMB: badgerCfg.IndexCacheSizeMB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return store, nil
}

// CreateDriver builds the backend for one configured driver and wraps it in
// a vfd.Driver with the process retry settings, the driver's probe error
// policy and rate limit, and Prometheus metrics when enabled.
//
// The driver still needs to be registered before files can be opened.
func CreateDriver(ctx context.Context, name string, cfg DriverConfig, global *Config) (*vfd.Driver, error) {
	backend, err := CreateBackend(ctx, cfg, global.S3)
	if err != nil {
		return nil, err
	}

	opts := vfd.Options{
		Name: name,
		Retry: retry.Config{
			MaxAttempts: global.Retry.MaxAttempts,
			MaxBackoff:  global.Retry.MaxBackoff,
		},
		OnProbeError: vfd.ProbeErrorPolicy(cfg.OnProbeError),
		Metrics:      metrics.NewVFDMetrics(name),
	}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		opts.Limiter = ratelimiter.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	drv, err := vfd.NewDriver(backend, opts)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return drv, nil
}
