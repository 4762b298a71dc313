package domain

// DefaultTargetID is the id of the registry entry that represents the primary root.
const DefaultTargetID = "default"

// DefaultPathMarker is the logical path resolved to the built-in primary root.
const DefaultPathMarker = "default"

// Settings for the synthesized default entry
const (
	DefaultTargetMaxGB    = 10
	DefaultTargetPriority = 1
)

// StorageTarget is a configured upload destination.
type StorageTarget struct {
	ID       string  `json:"id" validate:"required"`
	Path     string  `json:"path" validate:"required"`
	MaxGB    float64 `json:"maxGB" validate:"gte=0,lte=1048576"` // GB, 0 is unbounded, at most 1 PiB
	Priority int     `json:"priority"`
	Enabled  bool    `json:"enabled"`
}

// NewDefaultTarget returns the entry synthesized when the registry has no default.
func NewDefaultTarget() StorageTarget {
	return StorageTarget{
		ID:       DefaultTargetID,
		Path:     DefaultPathMarker,
		MaxGB:    DefaultTargetMaxGB,
		Priority: DefaultTargetPriority,
		Enabled:  true,
	}
}

// IsUnbounded returns true if the target has no configured cap
func (t *StorageTarget) IsUnbounded() bool {
	return t.MaxGB <= 0
}

// TargetPatch carries the fields an update may change. Nil fields are left untouched.
type TargetPatch struct {
	ID       string
	Path     *string
	MaxGB    *float64
	Priority *int
	Enabled  *bool
}

// Apply merges the patch over t
func (p *TargetPatch) Apply(t *StorageTarget) {
	if p.Path != nil {
		t.Path = *p.Path
	}
	if p.MaxGB != nil {
		t.MaxGB = *p.MaxGB
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Enabled != nil {
		t.Enabled = *p.Enabled
	}
}

// EnrichedTarget is a StorageTarget with live usage statistics attached.
type EnrichedTarget struct {
	StorageTarget

	ResolvedPath   string  `json:"resolvedPath"`
	UsedGB         float64 `json:"usedGB"`
	AvailGB        float64 `json:"availGB"`
	CapacityGB     float64 `json:"capacityGB"`
	UsagePercent   float64 `json:"usagePercent"`
	Mount          string  `json:"mount,omitempty"`
	DiskTotalGB    float64 `json:"diskTotalGB"`
	DiskAvailGB    float64 `json:"diskAvailGB"`
	ProbeAvailable bool    `json:"probeAvailable"`
}
