package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/logger"
)

func newTargetsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List storage targets with live usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			defer a.Close()

			targets, err := a.registry.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeIndented(cmd, targets)
			}
			printTargets(cmd.OutOrStdout(), targets)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newPartitionsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "partitions",
		Short: "List host partitions usable as storage targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			defer a.Close()

			partitions := a.discovery.Discover(cmd.Context())
			if asJSON {
				return writeIndented(cmd, partitions)
			}
			printPartitions(cmd.OutOrStdout(), partitions)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newSelectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "select <category>",
		Short:     "Show where the next upload of a category would be written",
		Args:      cobra.ExactArgs(1),
		ValidArgs: categoryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			defer a.Close()

			target, err := a.selector.Select(args[0])
			if err != nil {
				return err
			}
			return writeIndented(cmd, target)
		},
	}
}

// app loads configuration and wires the services for one-shot commands
func (o *rootOptions) app() (*app, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger.GetZapLogger())
}

func writeIndented(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func categoryNames() []string {
	cats := domain.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}
