package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/vertextoedge/showcase-storage/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "storage.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_LoadEmpty(t *testing.T) {
	s := openTestStore(t)

	targets, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if targets == nil || len(targets) != 0 {
		t.Errorf("Load() = %v, want empty non-nil slice", targets)
	}
	if err := s.Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTestStore(t)

	first := []domain.StorageTarget{
		{ID: "default", Path: "default", MaxGB: 10, Priority: 1, Enabled: true},
		{ID: "docs", Path: "/data/docs", MaxGB: 5, Priority: 2, Enabled: false},
	}
	if err := s.Save(first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := []domain.StorageTarget{
		{ID: "zeta", Path: "/z", MaxGB: 0.5, Priority: 3, Enabled: true},
		first[0],
	}
	if err := s.Save(second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load() returned %d targets, want 2", len(got))
	}
	for i := range second {
		if got[i] != second[i] {
			t.Errorf("target[%d] = %+v, want %+v", i, got[i], second[i])
		}
	}
}

func TestStore_SaveRejectsDuplicateIDs(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save([]domain.StorageTarget{{ID: "a", Path: "/a"}}); err != nil {
		t.Fatal(err)
	}

	err := s.Save([]domain.StorageTarget{{ID: "b", Path: "/b"}, {ID: "b", Path: "/c"}})
	if err == nil {
		t.Fatal("Save() error = nil for duplicate id")
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("failed Save() was not rolled back: %+v", got)
	}
}
