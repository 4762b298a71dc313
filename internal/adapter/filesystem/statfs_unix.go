//go:build !windows

package filesystem

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/vertextoedge/showcase-storage/internal/domain"
)

// Probe returns usage of the filesystem backing path using statfs(2)
func (p *StatfsProbe) Probe(_ context.Context, path string) (*domain.DiskUsage, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		p.logger.Debug("statfs failed", zap.String("path", path), zap.Error(err))
		return nil, nil
	}

	total := stat.Blocks * uint64(stat.Bsize)
	avail := stat.Bavail * uint64(stat.Bsize)
	free := stat.Bfree * uint64(stat.Bsize)

	return &domain.DiskUsage{
		Total: total,
		Used:  total - free,
		Avail: avail,
		Mount: mountPoint(path),
	}, nil
}

// mountPoint walks up from path until the device id changes
func mountPoint(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	var st unix.Stat_t
	if err := unix.Stat(abs, &st); err != nil {
		return ""
	}
	dev := st.Dev

	for {
		parent := filepath.Dir(abs)
		if parent == abs {
			return abs
		}
		if err := unix.Stat(parent, &st); err != nil || st.Dev != dev {
			return abs
		}
		abs = parent
	}
}
