package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/service/registry"
)

// maxAdminBody bounds JSON request bodies on the admin API
const maxAdminBody = 1 << 20

// AdminHandler serves the storage administration API
type AdminHandler struct {
	registry   Registry
	discoverer Discoverer
	logger     *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(registry Registry, discoverer Discoverer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		registry:   registry,
		discoverer: discoverer,
		logger:     logger,
	}
}

// HandleList returns every storage target with live usage
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	targets, err := h.registry.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list storage targets", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list storage targets")
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

// HandleCreate adds a storage target
func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	target, err := registry.ParseTarget(fields)
	if err != nil {
		h.fail(w, err)
		return
	}

	created, err := h.registry.Create(target)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate patches a storage target: PATCH /api/admin/storage/targets/{id}
func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	fields["id"] = chi.URLParam(r, "id")

	patch, err := registry.ParsePatch(fields)
	if err != nil {
		h.fail(w, err)
		return
	}

	updated, err := h.registry.Update(patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a storage target. Unknown ids still return 204.
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSeed creates a target from a discovered partition
func (h *AdminHandler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	mountpoint, err := cast.ToStringE(fields["mountpoint"])
	if err != nil {
		h.fail(w, domain.NewValidationError("mountpoint", "must be a string"))
		return
	}

	var maxGB float64
	if v, present := fields["maxGB"]; present && v != nil {
		if maxGB, err = cast.ToFloat64E(v); err != nil {
			h.fail(w, domain.NewValidationError("maxGB", "must be a number"))
			return
		}
	}

	created, err := h.registry.SeedFromPartition(mountpoint, maxGB)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandlePartitions lists host partitions eligible as storage targets
func (h *AdminHandler) HandlePartitions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.discoverer.Discover(r.Context()))
}

func (h *AdminHandler) decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	fields := map[string]any{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAdminBody))
	if err := dec.Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return fields, true
}

func (h *AdminHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("storage admin request failed", zap.Error(err))
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
