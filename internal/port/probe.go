package port

import (
	"context"

	"github.com/vertextoedge/showcase-storage/internal/domain"
)

// DiskProbe reports usage of the filesystem backing a path.
// A nil usage with a nil error means the probe could not be completed;
// callers treat that as "assume unlimited", never as zero space.
type DiskProbe interface {
	Probe(ctx context.Context, path string) (*domain.DiskUsage, error)
}

// PartitionLister enumerates mounted filesystems.
type PartitionLister interface {
	// ListMounts returns every mount the host reports, unfiltered.
	// Backends that learn usage while listing fill Mount.Usage.
	ListMounts(ctx context.Context) ([]domain.Mount, error)
}
