// Package registry manages the persisted list of storage targets and
// enriches it with live usage for the administrative view.
package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/domain/vo"
	"github.com/vertextoedge/showcase-storage/internal/metrics"
	"github.com/vertextoedge/showcase-storage/internal/port"
)

// Sizer aggregates the size of a directory tree
type Sizer interface {
	DirSize(dir string) (int64, error)
}

// Service is the storage target registry. It does not lock: concurrent
// writers race and the last Save wins.
type Service struct {
	store    port.TargetStore
	sizer    Sizer
	probe    port.DiskProbe
	resolver *Resolver
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a registry service
func New(store port.TargetStore, sizer Sizer, probe port.DiskProbe, resolver *Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return &Service{
		store:    store,
		sizer:    sizer,
		probe:    probe,
		resolver: resolver,
		validate: validate,
		logger:   logger,
	}
}

// List returns every target with live usage. The default entry is
// synthesized and persisted on first use.
func (s *Service) List(ctx context.Context) ([]domain.EnrichedTarget, error) {
	targets, err := s.loadSeeded()
	if err != nil {
		return nil, err
	}

	enriched := make([]domain.EnrichedTarget, 0, len(targets))
	for _, t := range targets {
		enriched = append(enriched, s.enrich(ctx, t))
	}
	return enriched, nil
}

// Targets returns the persisted targets without usage statistics
func (s *Service) Targets() ([]domain.StorageTarget, error) {
	return s.loadSeeded()
}

func (s *Service) loadSeeded() ([]domain.StorageTarget, error) {
	targets, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	if indexOf(targets, domain.DefaultTargetID) >= 0 {
		return targets, nil
	}

	targets = append([]domain.StorageTarget{domain.NewDefaultTarget()}, targets...)
	if err := s.store.Save(targets); err != nil {
		return nil, fmt.Errorf("failed to persist default target: %w", err)
	}
	s.logger.Info("seeded default storage target", zap.String("path", s.resolver.Resolve(domain.DefaultPathMarker)))
	return targets, nil
}

// enrich attaches usage stats. Failures degrade to zeroed fields for this
// row only.
func (s *Service) enrich(ctx context.Context, t domain.StorageTarget) domain.EnrichedTarget {
	resolved := s.resolver.Resolve(t.Path)
	e := domain.EnrichedTarget{StorageTarget: t, ResolvedPath: resolved}

	usedBytes, err := s.sizer.DirSize(resolved)
	if err != nil {
		s.logger.Warn("failed to aggregate target size",
			zap.String("id", t.ID), zap.String("path", resolved), zap.Error(err))
		usedBytes = 0
	}
	used := vo.SizeOf(usedBytes)
	metrics.TargetUsedBytes.WithLabelValues(t.ID).Set(float64(usedBytes))

	var usage *domain.DiskUsage
	if s.probe != nil {
		usage, err = s.probe.Probe(ctx, existingAncestor(resolved))
		if err != nil {
			s.logger.Warn("disk probe failed", zap.String("id", t.ID), zap.Error(err))
			usage = nil
		}
	}

	capSize := vo.SizeFromGB(t.MaxGB)
	capped := capSize.Bytes() > 0

	var avail, capacity vo.Size
	if usage != nil {
		probed := vo.SizeFromUint(usage.Avail)
		e.ProbeAvailable = true
		e.Mount = usage.Mount
		e.DiskTotalGB = vo.SizeFromUint(usage.Total).RoundedGB()
		e.DiskAvailGB = probed.RoundedGB()

		if capped {
			avail = probed.Min(capSize.Subtract(used))
			capacity = capSize
		} else {
			avail = probed
			capacity = vo.SizeFromUint(usage.Total)
		}
	} else if capped {
		avail = capSize.Subtract(used)
		capacity = capSize
	}

	e.UsedGB = used.RoundedGB()
	e.AvailGB = avail.RoundedGB()
	e.CapacityGB = capacity.RoundedGB()
	if capped {
		e.UsagePercent = used.PercentOf(capSize)
	}
	return e
}

// Create validates and appends a new target
func (s *Service) Create(target domain.StorageTarget) (*domain.StorageTarget, error) {
	target.ID = strings.TrimSpace(target.ID)
	target.Path = strings.TrimSpace(target.Path)

	if err := s.validateTarget(&target); err != nil {
		return nil, err
	}

	targets, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if indexOf(targets, target.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateID, target.ID)
	}

	targets = append(targets, target)
	if err := s.store.Save(targets); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	s.logger.Info("storage target created",
		zap.String("id", target.ID),
		zap.String("path", target.Path),
		zap.Float64("max_gb", target.MaxGB))
	return &target, nil
}

// Update merges the whitelisted fields of patch over an existing target
func (s *Service) Update(patch *domain.TargetPatch) (*domain.StorageTarget, error) {
	if patch == nil || strings.TrimSpace(patch.ID) == "" {
		return nil, domain.ErrMissingID
	}

	targets, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	idx := indexOf(targets, patch.ID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrTargetNotFound, patch.ID)
	}

	updated := targets[idx]
	patch.Apply(&updated)
	updated.Path = strings.TrimSpace(updated.Path)
	if err := s.validateTarget(&updated); err != nil {
		return nil, err
	}

	targets[idx] = updated
	if err := s.store.Save(targets); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	s.logger.Info("storage target updated", zap.String("id", updated.ID))
	return &updated, nil
}

// Delete removes a target. Deleting an unknown id is not an error.
func (s *Service) Delete(id string) error {
	targets, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	kept := targets[:0]
	for _, t := range targets {
		if t.ID != id {
			kept = append(kept, t)
		}
	}

	if err := s.store.Save(kept); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	if len(kept) != len(targets) {
		metrics.TargetUsedBytes.DeleteLabelValues(id)
		s.logger.Info("storage target deleted", zap.String("id", id))
	}
	return nil
}

// SeedFromPartition creates an enabled target rooted at a discovered mount point
func (s *Service) SeedFromPartition(mountpoint string, maxGB float64) (*domain.StorageTarget, error) {
	mountpoint = strings.TrimSpace(mountpoint)
	if mountpoint == "" {
		return nil, domain.NewValidationError("mountpoint", "is required")
	}

	targets, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	return s.Create(domain.StorageTarget{
		ID:       TargetIDFromMountpoint(mountpoint),
		Path:     mountpoint,
		MaxGB:    maxGB,
		Priority: len(targets) + 1,
		Enabled:  true,
	})
}

func (s *Service) validateTarget(t *domain.StorageTarget) error {
	err := s.validate.Struct(t)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return domain.NewValidationError(fe.Field(), "is required")
		case "gte":
			return domain.NewValidationError(fe.Field(), "must be >= "+fe.Param())
		case "lte":
			return domain.NewValidationError(fe.Field(), "must be <= "+fe.Param())
		default:
			return domain.NewValidationError(fe.Field(), "failed "+fe.Tag()+" validation")
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func indexOf(targets []domain.StorageTarget, id string) int {
	for i := range targets {
		if targets[i].ID == id {
			return i
		}
	}
	return -1
}

// TargetIDFromMountpoint derives a registry id from a mount point:
// "/" -> "root", "/mnt/data" -> "mnt-data", `D:\` -> "d".
func TargetIDFromMountpoint(mountpoint string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(mountpoint) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	id := strings.TrimRight(b.String(), "-")
	if id == "" {
		return "root"
	}
	return id
}
