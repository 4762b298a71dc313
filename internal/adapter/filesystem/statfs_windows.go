//go:build windows

package filesystem

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/vertextoedge/showcase-storage/internal/domain"
)

// Probe returns usage of the volume backing path using GetDiskFreeSpaceExW
func (p *StatfsProbe) Probe(_ context.Context, path string) (*domain.DiskUsage, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, nil
	}

	var freeBytesAvailable, totalNumberOfBytes, totalNumberOfFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &freeBytesAvailable, &totalNumberOfBytes, &totalNumberOfFreeBytes); err != nil {
		p.logger.Debug("GetDiskFreeSpaceEx failed", zap.String("path", path), zap.Error(err))
		return nil, nil
	}

	return &domain.DiskUsage{
		Total: totalNumberOfBytes,
		Used:  totalNumberOfBytes - totalNumberOfFreeBytes,
		Avail: freeBytesAvailable,
		Mount: filepath.VolumeName(path) + `\`,
	}, nil
}
