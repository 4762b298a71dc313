package jsonfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vertextoedge/showcase-storage/internal/domain"
)

func TestStore_LoadCreatesEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "storage-targets.json")
	s := Open(path)

	targets, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("Load() = %v, want empty", targets)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("registry file not created: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("file content = %q, want []", data)
	}
}

func TestStore_SaveLoadPreservesOrder(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "targets.json"))
	want := []domain.StorageTarget{
		{ID: "default", Path: "default", MaxGB: 10, Priority: 1, Enabled: true},
		{ID: "docs", Path: "/data/docs", MaxGB: 5, Priority: 2, Enabled: false},
		{ID: "big", Path: "D:\\uploads", MaxGB: 0, Priority: 3, Enabled: true},
	}

	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load() returned %d targets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStore_JSONFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	s := Open(path)
	if err := s.Save([]domain.StorageTarget{{ID: "a", Path: "/a", MaxGB: 1.5, Priority: 2, Enabled: true}}); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	for _, key := range []string{`"id"`, `"path"`, `"maxGB"`, `"priority"`, `"enabled"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("document missing %s: %s", key, data)
		}
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path).Load(); err == nil {
		t.Error("Load() error = nil for corrupt document")
	}
}
