package registry

import (
	"path/filepath"
	"testing"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver("/srv/uploads", "/opt/app")

	tests := []struct {
		in   string
		want string
	}{
		{in: "default", want: "/srv/uploads"},
		{in: "/data/docs", want: "/data/docs"},
		{in: `D:\uploads`, want: `D:\uploads`},
		{in: "c:/uploads", want: "c:/uploads"},
		{in: "public/extra", want: filepath.Join("/opt/app", "public/extra")},
	}

	for _, tt := range tests {
		if got := r.Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExistingAncestor(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "a", "b", "c")

	if got := existingAncestor(missing); got != root {
		t.Errorf("existingAncestor() = %q, want %q", got, root)
	}
	if got := existingAncestor(root); got != root {
		t.Errorf("existingAncestor(existing) = %q", got)
	}
}
