// Package allocator picks the physical directory an uploaded file is
// written to.
package allocator

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/domain/vo"
	"github.com/vertextoedge/showcase-storage/internal/metrics"
	"github.com/vertextoedge/showcase-storage/internal/port"
	"github.com/vertextoedge/showcase-storage/internal/util/ratelimiter"
)

// DefaultURLBase is the public prefix uploads are served under
const DefaultURLBase = "/uploads"

// capacityLogInterval limits how often a full tier is reported
const capacityLogInterval = time.Minute

// Config holds the two storage tiers. A cap of 0 means unlimited.
type Config struct {
	PrimaryRoot    string
	PrimaryMaxMB   float64
	SecondaryRoot  string
	SecondaryMaxMB float64
	URLBase        string
}

// Selector chooses between the primary and secondary root
type Selector struct {
	fs       port.FileSystem
	cfg      Config
	logger   *zap.Logger
	logLimit *ratelimiter.Limiter
}

// NewSelector creates a new Selector
func NewSelector(fs port.FileSystem, cfg Config, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.URLBase == "" {
		cfg.URLBase = DefaultURLBase
	}
	cfg.URLBase = strings.TrimRight(cfg.URLBase, "/")

	return &Selector{
		fs:       fs,
		cfg:      cfg,
		logger:   logger,
		logLimit: ratelimiter.New(capacityLogInterval),
	}
}

// Select returns the directory for a new upload of the given category.
// The primary root is used until it reaches its cap; then the secondary
// root takes over unless it is full too, in which case the primary is used
// anyway. Allocation never fails for lack of space.
func (s *Selector) Select(category string) (*domain.UploadTarget, error) {
	cat, err := domain.ParseCategory(category)
	if err != nil {
		return nil, err
	}

	root, location := s.cfg.PrimaryRoot, domain.LocationPrimary
	if s.preferSecondary() {
		root, location = s.cfg.SecondaryRoot, domain.LocationSecondary
	}

	subdir := cat.Subdir()
	dir := filepath.Join(root, subdir)
	if err := s.fs.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	metrics.AllocationsTotal.WithLabelValues(string(cat), string(location)).Inc()
	s.logger.Debug("upload target selected",
		zap.String("category", string(cat)),
		zap.String("location", string(location)),
		zap.String("dir", dir))

	return &domain.UploadTarget{
		Dir:       dir,
		URLPrefix: s.cfg.URLBase + "/" + subdir,
		Location:  location,
	}, nil
}

// Roots returns the configured roots in lookup order
func (s *Selector) Roots() []string {
	roots := []string{s.cfg.PrimaryRoot}
	if s.cfg.SecondaryRoot != "" {
		roots = append(roots, s.cfg.SecondaryRoot)
	}
	return roots
}

func (s *Selector) preferSecondary() bool {
	if s.cfg.SecondaryRoot == "" {
		return false
	}
	if !s.exceeded(s.cfg.PrimaryRoot, s.cfg.PrimaryMaxMB) {
		return false
	}
	if s.exceeded(s.cfg.SecondaryRoot, s.cfg.SecondaryMaxMB) {
		if ok, _ := s.logLimit.Allow("both"); ok {
			s.logger.Warn("both storage tiers are at capacity, writing to primary",
				zap.String("primary", s.cfg.PrimaryRoot),
				zap.String("secondary", s.cfg.SecondaryRoot))
		}
		return false
	}
	return true
}

// exceeded reports whether root has reached maxMB. An unlimited cap is
// never exceeded and a failed aggregation counts as empty.
func (s *Selector) exceeded(root string, maxMB float64) bool {
	limit := vo.SizeFromMB(maxMB)
	if limit.IsZero() {
		return false
	}

	used, err := s.fs.DirSize(root)
	if err != nil {
		s.logger.Warn("failed to aggregate tier size, assuming empty",
			zap.String("root", root), zap.Error(err))
		return false
	}

	full := vo.SizeOf(used).AtLeast(limit)
	if full {
		if ok, _ := s.logLimit.Allow(root); ok {
			s.logger.Info("storage tier at capacity",
				zap.String("root", root),
				zap.String("used", humanize.IBytes(uint64(used))),
				zap.String("cap", limit.String()))
		}
	}
	return full
}
