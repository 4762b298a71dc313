package registry

import (
	"errors"
	"testing"

	"github.com/vertextoedge/showcase-storage/internal/domain"
)

func TestParsePatch(t *testing.T) {
	patch, err := ParsePatch(map[string]any{
		"id":       " docs ",
		"maxGB":    "5",
		"priority": "3",
		"enabled":  "true",
		"path":     "/data/docs",
		"extra":    []any{1, 2},
	})
	if err != nil {
		t.Fatalf("ParsePatch() error = %v", err)
	}

	if patch.ID != "docs" {
		t.Errorf("ID = %q", patch.ID)
	}
	if patch.MaxGB == nil || *patch.MaxGB != 5 {
		t.Errorf("MaxGB = %v", patch.MaxGB)
	}
	if patch.Priority == nil || *patch.Priority != 3 {
		t.Errorf("Priority = %v", patch.Priority)
	}
	if patch.Enabled == nil || !*patch.Enabled {
		t.Errorf("Enabled = %v", patch.Enabled)
	}
	if patch.Path == nil || *patch.Path != "/data/docs" {
		t.Errorf("Path = %v", patch.Path)
	}
}

func TestParsePatch_OnlyGivenFields(t *testing.T) {
	patch, err := ParsePatch(map[string]any{"id": "docs", "enabled": false})
	if err != nil {
		t.Fatal(err)
	}
	if patch.Path != nil || patch.MaxGB != nil || patch.Priority != nil {
		t.Errorf("untouched fields set: %+v", patch)
	}
	if patch.Enabled == nil || *patch.Enabled {
		t.Errorf("Enabled = %v, want false", patch.Enabled)
	}
}

func TestParsePatch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		field  string
	}{
		{name: "missing id", fields: map[string]any{"maxGB": 1}},
		{name: "blank id", fields: map[string]any{"id": "   "}},
		{name: "bad maxGB", fields: map[string]any{"id": "a", "maxGB": "lots"}, field: "maxGB"},
		{name: "bad priority", fields: map[string]any{"id": "a", "priority": "high"}, field: "priority"},
		{name: "bad enabled", fields: map[string]any{"id": "a", "enabled": "maybe"}, field: "enabled"},
		{name: "bad path", fields: map[string]any{"id": "a", "path": map[string]any{"x": 1}}, field: "path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePatch(tt.fields)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("ParsePatch() error = %v, want ErrInvalidInput", err)
			}
			if tt.field == "" {
				return
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("error = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestParseTarget(t *testing.T) {
	target, err := ParseTarget(map[string]any{
		"id":    "docs",
		"path":  "/data/docs",
		"maxGB": 12.5,
	})
	if err != nil {
		t.Fatalf("ParseTarget() error = %v", err)
	}
	want := domain.StorageTarget{ID: "docs", Path: "/data/docs", MaxGB: 12.5, Enabled: true}
	if target != want {
		t.Errorf("ParseTarget() = %+v, want %+v", target, want)
	}

	disabled, err := ParseTarget(map[string]any{"id": "x", "path": "/x", "enabled": "false"})
	if err != nil {
		t.Fatal(err)
	}
	if disabled.Enabled {
		t.Error("enabled=false was ignored")
	}
}
