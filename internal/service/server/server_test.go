package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vertextoedge/showcase-storage/internal/adapter/filesystem"
	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/service/allocator"
)

// mockRegistry implements Registry for testing
type mockRegistry struct {
	targets   []domain.StorageTarget
	err       error
	lastPatch *domain.TargetPatch
	deleted   []string
	seeded    string
}

func (m *mockRegistry) List(ctx context.Context) ([]domain.EnrichedTarget, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.EnrichedTarget, 0, len(m.targets))
	for _, t := range m.targets {
		out = append(out, domain.EnrichedTarget{StorageTarget: t, ResolvedPath: t.Path})
	}
	return out, nil
}

func (m *mockRegistry) Create(t domain.StorageTarget) (*domain.StorageTarget, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, existing := range m.targets {
		if existing.ID == t.ID {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateID, t.ID)
		}
	}
	if t.ID == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	m.targets = append(m.targets, t)
	return &t, nil
}

func (m *mockRegistry) Update(p *domain.TargetPatch) (*domain.StorageTarget, error) {
	m.lastPatch = p
	for i := range m.targets {
		if m.targets[i].ID == p.ID {
			p.Apply(&m.targets[i])
			t := m.targets[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrTargetNotFound, p.ID)
}

func (m *mockRegistry) Delete(id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockRegistry) SeedFromPartition(mountpoint string, maxGB float64) (*domain.StorageTarget, error) {
	m.seeded = mountpoint
	t := domain.StorageTarget{ID: "mnt-data", Path: mountpoint, MaxGB: maxGB, Priority: 2, Enabled: true}
	return &t, nil
}

// mockDiscoverer implements Discoverer for testing
type mockDiscoverer struct {
	partitions []domain.PartitionInfo
}

func (m *mockDiscoverer) Discover(ctx context.Context) []domain.PartitionInfo {
	return m.partitions
}

type testEnv struct {
	server    *Server
	registry  *mockRegistry
	primary   string
	secondary string
}

func newTestEnv(t *testing.T, cfg *Config, primaryMaxMB float64) *testEnv {
	t.Helper()
	base := t.TempDir()
	env := &testEnv{
		registry:  &mockRegistry{targets: []domain.StorageTarget{domain.NewDefaultTarget()}},
		primary:   filepath.Join(base, "primary"),
		secondary: filepath.Join(base, "secondary"),
	}

	fs := filesystem.NewManager()
	sel := allocator.NewSelector(fs, allocator.Config{
		PrimaryRoot:   env.primary,
		PrimaryMaxMB:  primaryMaxMB,
		SecondaryRoot: env.secondary,
	}, nil)

	discoverer := &mockDiscoverer{partitions: []domain.PartitionInfo{
		{Device: "/dev/sda1", Mountpoint: "/", FSType: "ext4", SizeGB: 100, UsedGB: 40, AvailGB: 60},
	}}

	env.server = New(cfg, env.registry, discoverer, sel, fs, nil)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, url, body string) *http.Request {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, url, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", "My project"); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestServer_Metrics(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	env.do(multipartRequest(t, "/api/uploads/works", "file", "a.txt", []byte("x")))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "showcase_storage_allocations_total") {
		t.Error("allocation counter missing from /metrics")
	}
}

func TestAdmin_ListTargets(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/storage/targets", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0]["id"] != "default" || got[0]["maxGB"] != float64(10) {
		t.Errorf("body = %v", got)
	}
	if _, ok := got[0]["probeAvailable"]; !ok {
		t.Error("enriched fields missing")
	}
}

func TestAdmin_CreateTarget(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "created", body: `{"id":"docs","path":"/data/docs","maxGB":"5","priority":2}`, wantStatus: http.StatusCreated},
		{name: "duplicate", body: `{"id":"default","path":"/x"}`, wantStatus: http.StatusConflict},
		{name: "missing id", body: `{"path":"/x"}`, wantStatus: http.StatusBadRequest},
		{name: "bad number", body: `{"id":"x","path":"/x","maxGB":"lots"}`, wantStatus: http.StatusBadRequest},
		{name: "bad json", body: `{"id":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil, 0)
			rec := env.do(jsonRequest(http.MethodPost, "/api/admin/storage/targets", tt.body))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body map[string]any
			json.NewDecoder(rec.Body).Decode(&body)
			if tt.wantStatus == http.StatusCreated {
				if body["id"] != "docs" || body["maxGB"] != float64(5) || body["enabled"] != true {
					t.Errorf("body = %v", body)
				}
			} else if body["error"] == nil {
				t.Errorf("error body missing: %v", body)
			}
		})
	}
}

func TestAdmin_UpdateTarget(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	rec := env.do(jsonRequest(http.MethodPatch, "/api/admin/storage/targets/default",
		`{"id":"ignored","maxGB":"20","enabled":"false","colour":"blue"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if env.registry.lastPatch.ID != "default" {
		t.Errorf("patch id = %s, want URL id", env.registry.lastPatch.ID)
	}
	got := env.registry.targets[0]
	if got.MaxGB != 20 || got.Enabled {
		t.Errorf("target = %+v", got)
	}

	rec = env.do(jsonRequest(http.MethodPatch, "/api/admin/storage/targets/ghost", `{"maxGB":1}`))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", rec.Code)
	}
}

func TestAdmin_DeleteTarget(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	for range 2 {
		rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/admin/storage/targets/docs", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	}
	if len(env.registry.deleted) != 2 || env.registry.deleted[0] != "docs" {
		t.Errorf("deleted = %v", env.registry.deleted)
	}
}

func TestAdmin_SeedAndPartitions(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	rec := env.do(jsonRequest(http.MethodPost, "/api/admin/storage/targets/seed", `{"mountpoint":"/mnt/data","maxGB":50}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed status = %d (%s)", rec.Code, rec.Body.String())
	}
	if env.registry.seeded != "/mnt/data" {
		t.Errorf("seeded = %q", env.registry.seeded)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/admin/storage/partitions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("partitions status = %d", rec.Code)
	}
	var parts []map[string]any
	json.NewDecoder(rec.Body).Decode(&parts)
	if len(parts) != 1 || parts[0]["mountpoint"] != "/" || parts[0]["fstype"] != "ext4" {
		t.Errorf("partitions = %v", parts)
	}
}

func TestAdmin_BasicAuth(t *testing.T) {
	env := newTestEnv(t, &Config{AdminUsername: "admin", AdminPassword: "secret"}, 0)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/storage/targets", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/storage/targets", nil)
	req.SetBasicAuth("admin", "wrong")
	if rec := env.do(req); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/storage/targets", nil)
	req.SetBasicAuth("admin", "secret")
	if rec := env.do(req); rec.Code != http.StatusOK {
		t.Errorf("authorized status = %d", rec.Code)
	}

	// uploads stay public
	rec = env.do(multipartRequest(t, "/api/uploads/avatars", "file", "me.png", []byte("png")))
	if rec.Code != http.StatusCreated {
		t.Errorf("upload status = %d", rec.Code)
	}
}

func TestUpload_StoreAndServe(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	fixed := time.Unix(0, 1700000000000000000)
	env.server.uploadHandler.now = func() time.Time { return fixed }

	content := []byte("a very creative project")
	rec := env.do(multipartRequest(t, "/api/uploads/works", "file", `C:\Users\kid\My Robot!.pdf`, content))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}

	var res UploadResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	wantURL := "/uploads/works/1700000000000000000-My_Robot_.pdf"
	if res.URL != wantURL || res.Location != domain.LocationPrimary || res.Size != int64(len(content)) {
		t.Errorf("result = %+v", res)
	}

	stored := filepath.Join(env.primary, "works", "1700000000000000000-My_Robot_.pdf")
	data, err := os.ReadFile(stored)
	if err != nil || !bytes.Equal(data, content) {
		t.Fatalf("stored file = %q, %v", data, err)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, wantURL, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != string(content) {
		t.Errorf("serve status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestUpload_OverflowToSecondary(t *testing.T) {
	env := newTestEnv(t, nil, 0.001)

	// push primary past its ~1KB cap
	if err := os.MkdirAll(filepath.Join(env.primary, "honors"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.primary, "honors", "big.bin"), make([]byte, 4096), 0644); err != nil {
		t.Fatal(err)
	}

	rec := env.do(multipartRequest(t, "/api/uploads/courses", "file", "notes.txt", []byte("notes")))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var res UploadResult
	json.NewDecoder(rec.Body).Decode(&res)
	if res.Location != domain.LocationSecondary {
		t.Fatalf("location = %s, want secondary", res.Location)
	}

	// served through the secondary fallback
	rec = env.do(httptest.NewRequest(http.MethodGet, res.URL, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "notes" {
		t.Errorf("serve status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
	}{
		{
			name: "unknown category",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/uploads/secrets", "file", "a.txt", []byte("x"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return jsonRequest(http.MethodPost, "/api/uploads/works", `{}`)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing file field",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/uploads/works", "attachment", "a.txt", []byte("x"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/uploads/works", "file", "big.bin", make([]byte, 4096))
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &Config{MaxUploadBytes: 1024}, 0)
			rec := env.do(tt.req(t))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestUpload_TooLargeLeavesNoTempFile(t *testing.T) {
	env := newTestEnv(t, &Config{MaxUploadBytes: 1024}, 0)
	env.do(multipartRequest(t, "/api/uploads/works", "file", "big.bin", make([]byte, 4096)))

	entries, _ := os.ReadDir(filepath.Join(env.primary, "works"))
	for _, e := range entries {
		t.Errorf("leftover file %s", e.Name())
	}
}

func TestServe_Rejections(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	dir := filepath.Join(env.primary, "works")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "partial.bin"+filesystem.TempSuffix), []byte("x"), 0644)

	for _, url := range []string{
		"/uploads/works/missing.txt",
		"/uploads/secrets/a.txt",
		"/uploads/works/partial.bin" + filesystem.TempSuffix,
		"/uploads/works/..",
	} {
		rec := env.do(httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", url, rec.Code)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"photo.png":            "photo.png",
		"../../etc/passwd":     "passwd",
		`C:\tmp\report v2.doc`: "report_v2.doc",
		".hidden":              "hidden",
		"":                     "file",
		"日本.txt":               "__.txt",
		"draft.uploading":      "draft",
		"///":                  "file",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
