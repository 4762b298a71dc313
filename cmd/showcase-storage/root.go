package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vertextoedge/showcase-storage/internal/config"
	"github.com/vertextoedge/showcase-storage/internal/logger"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "showcase-storage",
		Short:         "Upload storage allocator for the youth AI showcase",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "Path to configuration file")

	cmd.AddCommand(
		newServeCmd(opts),
		newTargetsCmd(opts),
		newPartitionsCmd(opts),
		newSelectCmd(opts),
	)
	return cmd
}

// load reads the configuration and initializes the global logger
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
