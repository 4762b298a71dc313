package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/adapter/filesystem"
	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/port"
)

// uploadField is the multipart form field carrying the file
const uploadField = "file"

// UploadHandler receives uploads and serves stored files
type UploadHandler struct {
	allocator Allocator
	fs        port.FileSystem
	maxBytes  int64
	logger    *zap.Logger
	now       func() time.Time
}

// UploadResult is returned for every stored upload
type UploadResult struct {
	URL      string          `json:"url"`
	Location domain.Location `json:"location"`
	Size     int64           `json:"size"`
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(allocator Allocator, fs port.FileSystem, maxBytes int64, logger *zap.Logger) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultConfig().MaxUploadBytes
	}
	return &UploadHandler{
		allocator: allocator,
		fs:        fs,
		maxBytes:  maxBytes,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleUpload stores a file: POST /api/uploads/{category}
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if _, err := domain.ParseCategory(category); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart/form-data body required")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		if err != nil {
			h.failBody(w, err)
			return
		}
		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}

		h.store(w, category, part.FileName(), part)
		part.Close()
		return
	}
}

func (h *UploadHandler) store(w http.ResponseWriter, category, filename string, body io.Reader) {
	target, err := h.allocator.Select(category)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to allocate upload directory", zap.String("category", category), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to allocate storage")
		return
	}

	name := fmt.Sprintf("%d-%s", h.now().UnixNano(), SanitizeFilename(filename))
	stored, size, err := h.fs.WriteFile(target.Dir, name, body)
	if err != nil {
		h.failBody(w, err)
		return
	}

	h.logger.Info("upload stored",
		zap.String("category", category),
		zap.String("location", string(target.Location)),
		zap.String("path", stored),
		zap.String("size", humanize.IBytes(uint64(size))))

	writeJSON(w, http.StatusCreated, UploadResult{
		URL:      target.URLPrefix + "/" + name,
		Location: target.Location,
		Size:     size,
	})
}

func (h *UploadHandler) failBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge,
			"upload exceeds "+humanize.IBytes(uint64(tooLarge.Limit)))
		return
	}
	h.logger.Error("failed to store upload", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "failed to store upload")
}

// HandleServe serves a stored file: GET /uploads/{subdir}/{name}.
// The primary root is tried first, then the secondary.
func (h *UploadHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	subdir := chi.URLParam(r, "subdir")
	name := chi.URLParam(r, "name")

	if !knownSubdir(subdir) || !safeName(name) {
		http.NotFound(w, r)
		return
	}

	for _, root := range h.allocator.Roots() {
		full := filepath.Join(root, subdir, name)
		if h.fs.FileExists(full) {
			http.ServeFile(w, r, full)
			return
		}
	}
	http.NotFound(w, r)
}

func knownSubdir(subdir string) bool {
	for _, c := range domain.Categories() {
		if c.Subdir() == subdir {
			return true
		}
	}
	return false
}

func safeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.HasSuffix(name, filesystem.TempSuffix) {
		return false
	}
	return true
}

// SanitizeFilename reduces a client supplied file name to a safe base name
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.TrimLeft(b.String(), ".")
	out = strings.TrimSuffix(out, filesystem.TempSuffix)
	if out == "" || strings.Trim(out, "_") == "" {
		return "file"
	}
	return out
}
