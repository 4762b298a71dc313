// Package discovery lists the host partitions an operator may seed
// storage targets from.
package discovery

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/domain/vo"
	"github.com/vertextoedge/showcase-storage/internal/port"
)

// DefaultTimeout bounds a whole discovery run
const DefaultTimeout = 5 * time.Second

// ExcludedPrefixes are virtual or volatile mounts never offered as targets
var ExcludedPrefixes = []string{
	"/proc",
	"/sys",
	"/run",
	"/dev",
	"/boot/efi",
	"/tmp",
	"/var/tmp",
	"/snap",
}

// Service discovers mounted partitions and their usage
type Service struct {
	lister  port.PartitionLister
	probe   port.DiskProbe
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a discovery service. probe fills usage for mounts the lister
// did not size itself.
func New(lister port.PartitionLister, probe port.DiskProbe, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{lister: lister, probe: probe, timeout: timeout, logger: logger}
}

// Discover returns the usable partitions. It never fails: a lister error
// or timeout yields an empty list.
func (s *Service) Discover(ctx context.Context) []domain.PartitionInfo {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	mounts, err := s.lister.ListMounts(ctx)
	if err != nil {
		s.logger.Warn("partition listing failed", zap.Error(err))
		return []domain.PartitionInfo{}
	}

	partitions := make([]domain.PartitionInfo, 0, len(mounts))
	for _, m := range mounts {
		if !Usable(m.Mountpoint) {
			continue
		}

		usage := m.Usage
		if usage == nil && s.probe != nil {
			usage, err = s.probe.Probe(ctx, m.Mountpoint)
			if err != nil {
				s.logger.Debug("partition probe failed", zap.String("mountpoint", m.Mountpoint), zap.Error(err))
				usage = nil
			}
		}

		if ctx.Err() != nil {
			s.logger.Warn("partition discovery timed out", zap.Duration("timeout", s.timeout))
			return []domain.PartitionInfo{}
		}

		partitions = append(partitions, toPartitionInfo(m, usage))
	}
	return partitions
}

// Usable reports whether a mount point may be offered as a storage target.
// Prefixes match literally, so /snapshots is dropped along with /snap.
func Usable(mountpoint string) bool {
	if mountpoint == "" {
		return false
	}
	for _, prefix := range ExcludedPrefixes {
		if strings.HasPrefix(mountpoint, prefix) {
			return false
		}
	}
	return true
}

func toPartitionInfo(m domain.Mount, usage *domain.DiskUsage) domain.PartitionInfo {
	info := domain.PartitionInfo{
		Device:     m.Device,
		Mountpoint: m.Mountpoint,
		FSType:     m.FSType,
	}
	if usage != nil {
		info.SizeGB = vo.SizeFromUint(usage.Total).RoundedGB()
		info.UsedGB = vo.SizeFromUint(usage.Used).RoundedGB()
		info.AvailGB = vo.SizeFromUint(usage.Avail).RoundedGB()
	}
	return info
}
