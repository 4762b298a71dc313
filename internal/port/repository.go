package port

import (
	"github.com/vertextoedge/showcase-storage/internal/domain"
)

// TargetStore persists the storage target registry as one ordered document.
type TargetStore interface {
	// Load returns the persisted list, initializing an empty one if absent
	Load() ([]domain.StorageTarget, error)

	// Save replaces the persisted list
	Save(targets []domain.StorageTarget) error

	// Close releases resources held by the store
	Close() error
}
