package filesystem

import (
	"os"
	"path/filepath"
)

// DirSize returns the total size of all regular files under dir, descending
// into every subdirectory. A root that does not exist (or is not a
// directory) has size 0. A file that cannot be stat'ed contributes 0; a
// directory that cannot be listed fails the whole call.
func (m *Manager) DirSize(dir string) (int64, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return 0, nil
	}
	return dirSize(dir)
}

func dirSize(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	var size int64
	for _, entry := range entries {
		if entry.IsDir() {
			n, err := dirSize(filepath.Join(dir, entry.Name()))
			if err != nil {
				return 0, err
			}
			size += n
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		size += info.Size()
	}

	return size, nil
}
