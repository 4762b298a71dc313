package port

import (
	"io"
	"time"
)

// FileSystem defines the interface for local filesystem operations
type FileSystem interface {
	// DirSize returns the total size of regular files under dir, recursively.
	// A missing root yields 0 and no error.
	DirSize(dir string) (int64, error)

	// EnsureDir creates dir and any missing parents
	EnsureDir(dir string) error

	// WriteFile streams content into dir/name via a temporary file
	// Returns: final path, bytes written, error
	WriteFile(dir, name string, reader io.Reader) (string, int64, error)

	// DeleteFile removes a file; a missing file is not an error
	DeleteFile(path string) error

	// FileExists checks if a regular file exists at path
	FileExists(path string) bool

	// CleanOldTempFiles removes temp files under dir older than the specified duration
	// Returns the number of files deleted
	CleanOldTempFiles(dir string, olderThan time.Duration) (int, error)
}
