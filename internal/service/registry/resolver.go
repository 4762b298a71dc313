package registry

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vertextoedge/showcase-storage/internal/domain"
)

var windowsAbsPattern = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// Resolver turns registry paths into absolute filesystem paths
type Resolver struct {
	primaryRoot string
	workDir     string
}

// NewResolver creates a resolver. Relative paths resolve against workDir.
func NewResolver(primaryRoot, workDir string) *Resolver {
	return &Resolver{primaryRoot: primaryRoot, workDir: workDir}
}

// Resolve maps the default marker to the primary root, keeps absolute POSIX
// and drive-letter paths as they are, and joins anything else to workDir.
func (r *Resolver) Resolve(path string) string {
	if path == domain.DefaultPathMarker {
		return r.primaryRoot
	}
	if IsAbsolute(path) {
		return path
	}
	return filepath.Join(r.workDir, path)
}

// IsAbsolute reports whether path is absolute in POSIX or Windows form,
// independent of the host OS.
func IsAbsolute(path string) bool {
	return strings.HasPrefix(path, "/") || windowsAbsPattern.MatchString(path) || filepath.IsAbs(path)
}

// existingAncestor returns path or its nearest parent that exists, so a
// target whose directory was not created yet still reports its disk.
func existingAncestor(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
