package filesystem

import (
	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/port"
)

// StatfsProbe queries the kernel directly instead of shelling out.
// Platform-specific implementation in statfs_unix.go and statfs_windows.go
type StatfsProbe struct {
	logger *zap.Logger
}

var _ port.DiskProbe = (*StatfsProbe)(nil)

// NewStatfsProbe creates a syscall-backed disk probe
func NewStatfsProbe(logger *zap.Logger) *StatfsProbe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatfsProbe{logger: logger}
}
