package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/adapter/filesystem"
	"github.com/vertextoedge/showcase-storage/internal/adapter/jsonfile"
	"github.com/vertextoedge/showcase-storage/internal/adapter/osprobe"
	"github.com/vertextoedge/showcase-storage/internal/adapter/psutil"
	"github.com/vertextoedge/showcase-storage/internal/adapter/sqlite"
	"github.com/vertextoedge/showcase-storage/internal/config"
	"github.com/vertextoedge/showcase-storage/internal/port"
	"github.com/vertextoedge/showcase-storage/internal/service/allocator"
	"github.com/vertextoedge/showcase-storage/internal/service/discovery"
	"github.com/vertextoedge/showcase-storage/internal/service/registry"
)

// app holds the wired services shared by every command
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	fs        *filesystem.Manager
	store     port.TargetStore
	registry  *registry.Service
	discovery *discovery.Service
	selector  *allocator.Selector
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	primary := absFrom(wd, cfg.Storage.PrimaryRoot)
	secondary := ""
	if cfg.Storage.SecondaryRoot != "" {
		secondary = absFrom(wd, cfg.Storage.SecondaryRoot)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	fs := filesystem.NewManager()
	probe := newProbe(cfg, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		fs:     fs,
		store:  store,
		registry: registry.New(store, fs, probe,
			registry.NewResolver(primary, wd), logger),
		discovery: discovery.New(newLister(cfg, logger), probe,
			cfg.Discovery.GetTimeout(), logger),
		selector: allocator.NewSelector(fs, allocator.Config{
			PrimaryRoot:    primary,
			PrimaryMaxMB:   cfg.Storage.PrimaryMaxMB,
			SecondaryRoot:  secondary,
			SecondaryMaxMB: cfg.Storage.SecondaryMaxMB,
			URLBase:        cfg.Storage.PublicURLBase,
		}, logger),
	}, nil
}

// Close releases the registry store and flushes buffered log entries.
// Sync errors are dropped: stderr returns EINVAL on some platforms.
func (a *app) Close() error {
	err := a.store.Close()
	_ = a.logger.Sync()
	return err
}

func openStore(cfg *config.Config) (port.TargetStore, error) {
	if cfg.Registry.Backend == "sqlite" {
		store, err := sqlite.Open(cfg.GetDatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open registry database %s: %w", cfg.GetDatabasePath(), err)
		}
		return store, nil
	}
	return jsonfile.Open(cfg.GetRegistryPath()), nil
}

func newProbe(cfg *config.Config, logger *zap.Logger) port.DiskProbe {
	switch cfg.Probe.Backend {
	case "statfs":
		return filesystem.NewStatfsProbe(logger)
	case "gopsutil":
		return psutil.New(logger)
	default:
		return osprobe.NewCommandProbe(&osprobe.Config{Timeout: cfg.Probe.GetCommandTimeout()}, nil, logger)
	}
}

func newLister(cfg *config.Config, logger *zap.Logger) port.PartitionLister {
	if cfg.Discovery.Backend == "gopsutil" {
		return psutil.New(logger)
	}
	return osprobe.NewCommandLister(&osprobe.Config{Timeout: cfg.Probe.GetCommandTimeout()}, nil)
}

func absFrom(wd, path string) string {
	if registry.IsAbsolute(path) {
		return path
	}
	return filepath.Join(wd, path)
}
