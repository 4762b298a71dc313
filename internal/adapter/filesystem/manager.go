package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vertextoedge/showcase-storage/internal/port"
)

// TempSuffix marks files that are still being written
const TempSuffix = ".uploading"

const defaultBufferSize = 1024 * 1024 // 1MB

// Manager handles local filesystem operations for upload roots
type Manager struct {
	bufferSize int
}

// Ensure Manager implements port.FileSystem
var _ port.FileSystem = (*Manager)(nil)

// NewManager creates a new filesystem manager
func NewManager() *Manager {
	return NewManagerWithBufferSize(defaultBufferSize)
}

// NewManagerWithBufferSize creates a new filesystem manager with custom copy buffer size
func NewManagerWithBufferSize(bufferSize int) *Manager {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Manager{bufferSize: bufferSize}
}

// EnsureDir ensures the directory exists
func (m *Manager) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dir %s: %w", dir, err)
	}
	return nil
}

// WriteFile streams reader into dir/name. Content goes to a temp file first
// and is renamed into place once fully written.
func (m *Manager) WriteFile(dir, name string, reader io.Reader) (string, int64, error) {
	if err := m.EnsureDir(dir); err != nil {
		return "", 0, err
	}

	finalPath := filepath.Join(dir, name)
	tempPath := finalPath + TempSuffix

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	buf := make([]byte, m.bufferSize)
	written, err := io.CopyBuffer(f, reader, buf)
	if err != nil {
		f.Close()
		os.Remove(tempPath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return "", 0, fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", 0, fmt.Errorf("failed to rename temp file: %w", err)
	}

	return finalPath, written, nil
}

// DeleteFile removes a stored file
func (m *Manager) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileExists checks if a regular file exists
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CleanOldTempFiles removes temp files under dir older than the specified duration.
// A missing dir is not an error.
func (m *Manager) CleanOldTempFiles(dir string, olderThan time.Duration) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	count := 0
	threshold := time.Now().Add(-olderThan)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == TempSuffix && info.ModTime().Before(threshold) {
			if removeErr := os.Remove(path); removeErr == nil {
				count++
			}
		}
		return nil
	})
	return count, err
}
