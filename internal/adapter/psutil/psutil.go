// Package psutil implements disk probing and partition listing on top of
// gopsutil, for hosts where df/lsblk/wmic are unavailable.
package psutil

import (
	"context"

	"github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/port"
)

// Backend is both a port.DiskProbe and a port.PartitionLister
type Backend struct {
	logger *zap.Logger
}

var (
	_ port.DiskProbe       = (*Backend)(nil)
	_ port.PartitionLister = (*Backend)(nil)
)

// New creates a gopsutil backend
func New(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{logger: logger}
}

// Probe returns usage for the filesystem backing path, or nil if unavailable
func (b *Backend) Probe(ctx context.Context, path string) (*domain.DiskUsage, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		b.logger.Debug("gopsutil usage failed", zap.String("path", path), zap.Error(err))
		return nil, nil
	}
	return toDiskUsage(usage, ""), nil
}

// ListMounts returns physical partitions (gopsutil already drops most pseudo filesystems)
func (b *Backend) ListMounts(ctx context.Context) ([]domain.Mount, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	mounts := make([]domain.Mount, 0, len(partitions))
	for _, p := range partitions {
		mounts = append(mounts, domain.Mount{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			FSType:     p.Fstype,
		})
	}
	return mounts, nil
}

func toDiskUsage(u *disk.UsageStat, mount string) *domain.DiskUsage {
	if mount == "" {
		mount = u.Path
	}
	return &domain.DiskUsage{
		Total: u.Total,
		Used:  u.Used,
		Avail: u.Free,
		Mount: mount,
	}
}
