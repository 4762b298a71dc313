package registry

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/vertextoedge/showcase-storage/internal/domain"
)

// ParsePatch builds a TargetPatch from a decoded request body. Only id,
// path, maxGB, priority and enabled are read; each is coerced from string
// input when needed ("5", "true"). Every other key is ignored.
func ParsePatch(fields map[string]any) (*domain.TargetPatch, error) {
	id, err := cast.ToStringE(fields["id"])
	if err != nil || strings.TrimSpace(id) == "" {
		return nil, domain.ErrMissingID
	}

	patch := &domain.TargetPatch{ID: strings.TrimSpace(id)}
	if err := parseMutable(fields, patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// ParseTarget builds a StorageTarget for creation with the same coercion
// rules as ParsePatch. enabled defaults to true; a missing id or path is
// left empty for validation to reject.
func ParseTarget(fields map[string]any) (domain.StorageTarget, error) {
	target := domain.StorageTarget{Enabled: true}
	if v, ok := fields["id"]; ok && v != nil {
		target.ID = cast.ToString(v)
	}

	var patch domain.TargetPatch
	if err := parseMutable(fields, &patch); err != nil {
		return target, err
	}
	patch.Apply(&target)
	return target, nil
}

func parseMutable(fields map[string]any, patch *domain.TargetPatch) error {
	if v, ok := fields["path"]; ok && v != nil {
		path, err := cast.ToStringE(v)
		if err != nil {
			return domain.NewValidationError("path", "must be a string")
		}
		patch.Path = &path
	}

	if v, ok := fields["maxGB"]; ok && v != nil {
		maxGB, err := cast.ToFloat64E(v)
		if err != nil {
			return domain.NewValidationError("maxGB", "must be a number")
		}
		patch.MaxGB = &maxGB
	}

	if v, ok := fields["priority"]; ok && v != nil {
		priority, err := cast.ToIntE(v)
		if err != nil {
			return domain.NewValidationError("priority", "must be an integer")
		}
		patch.Priority = &priority
	}

	if v, ok := fields["enabled"]; ok && v != nil {
		enabled, err := cast.ToBoolE(v)
		if err != nil {
			return domain.NewValidationError("enabled", "must be a boolean")
		}
		patch.Enabled = &enabled
	}

	return nil
}
