package osprobe

import (
	"context"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/port"
)

// CommandLister enumerates mounts with lsblk (POSIX) or wmic (Windows)
type CommandLister struct {
	config Config
	runner Runner
}

var _ port.PartitionLister = (*CommandLister)(nil)

// NewCommandLister creates a partition lister backed by OS utilities
func NewCommandLister(cfg *Config, runner Runner) *CommandLister {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &CommandLister{
		config: cfg.withDefaults(),
		runner: runner,
	}
}

// ListMounts returns every mounted block device. On Windows each fixed
// logical disk already carries its usage.
func (l *CommandLister) ListMounts(ctx context.Context) ([]domain.Mount, error) {
	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	if l.config.GOOS == "windows" {
		out, err := l.runner.Run(ctx, "wmic", "logicaldisk",
			"get", "Caption,DriveType,FileSystem,FreeSpace,Size", "/format:csv")
		if err != nil {
			return nil, err
		}
		return parseLogicalDisks(out)
	}

	out, err := l.runner.Run(ctx, "lsblk", "-P", "-o", "NAME,MOUNTPOINT,FSTYPE")
	if err != nil {
		return nil, err
	}
	return parseLsblk(out), nil
}
