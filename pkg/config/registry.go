package config

import (
	"context"
	"fmt"
	"slices"

	"github.com/marmos91/dittovfd/internal/logger"
	"github.com/marmos91/dittovfd/pkg/registry"
)

// InitializeRegistry creates a Registry holding one driver per configured
// entry, with the configured default selected.
//
// Drivers are created in name order. If any driver fails, the ones already
// created are closed and the error is returned.
//
// Call InitializeMetrics first when metrics are wanted: drivers pick up
// Prometheus metrics only if the registry is already initialized.
//
// Example:
//
//	cfg, _ := config.Load("config.yaml")
//	reg, err := config.InitializeRegistry(ctx, cfg)
//	if err != nil {
//	    log.Fatalf("Failed to initialize drivers: %v", err)
//	}
//	defer reg.Close()
func InitializeRegistry(ctx context.Context, cfg *Config) (*registry.Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}
	if len(cfg.Drivers) == 0 {
		return nil, fmt.Errorf("no drivers configured: at least one driver is required")
	}

	logger.Debug("Initializing registry from configuration")

	reg := registry.NewRegistry()

	names := make([]string, 0, len(cfg.Drivers))
	for name := range cfg.Drivers {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		drvCfg := cfg.Drivers[name]
		logger.Debug("Creating driver %q (backend: %s)", name, drvCfg.Type)

		drv, err := CreateDriver(ctx, name, drvCfg, cfg)
		if err != nil {
			_ = reg.Close()
			return nil, fmt.Errorf("failed to create driver %q: %w", name, err)
		}

		id, err := reg.RegisterDriver(name, drv)
		if err != nil {
			_ = drv.Close()
			_ = reg.Close()
			return nil, fmt.Errorf("failed to register driver %q: %w", name, err)
		}

		logger.Debug("Driver %q registered with id %d", name, id)
	}

	if cfg.DefaultDriver != "" {
		if err := reg.SetDefault(cfg.DefaultDriver); err != nil {
			_ = reg.Close()
			return nil, fmt.Errorf("default_driver: %w", err)
		}
	}

	logger.Debug("Registered %d driver(s)", reg.CountDrivers())
	return reg, nil
}
