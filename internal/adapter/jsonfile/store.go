// Package jsonfile persists the storage target registry as a JSON array on disk.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/port"
)

// Store implements port.TargetStore using a single JSON document
type Store struct {
	path string
}

// Ensure Store implements port.TargetStore
var _ port.TargetStore = (*Store)(nil)

// Open returns a store for path. The file is created on first Load.
func Open(path string) *Store {
	return &Store{path: path}
}

// Load reads the registry, creating the directory and an empty `[]` file if absent
func (s *Store) Load() ([]domain.StorageTarget, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.Save(nil); err != nil {
			return nil, err
		}
		return []domain.StorageTarget{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var targets []domain.StorageTarget
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("failed to decode registry %s: %w", s.path, err)
	}
	if targets == nil {
		targets = []domain.StorageTarget{}
	}
	return targets, nil
}

// Save replaces the whole document. It writes to a temp file and renames it
// into place so readers never see a partial document.
func (s *Store) Save(targets []domain.StorageTarget) error {
	if targets == nil {
		targets = []domain.StorageTarget{}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create registry dir: %w", err)
	}

	data, err := json.MarshalIndent(targets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}
