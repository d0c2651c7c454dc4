package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

// ReferenceHandler handles storage location and tag endpoints.
type ReferenceHandler struct {
	DB *sql.DB
}

// ListLocations handles GET /api/locations.
func (h *ReferenceHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := store.ListLocations(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list locations")
		return
	}
	if locations == nil {
		locations = []model.StorageLocation{}
	}
	jsonResponse(w, http.StatusOK, locations)
}

// CreateLocation handles POST /api/locations.
func (h *ReferenceHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonProblems(w, []string{"name is required"})
		return
	}

	location, err := store.CreateLocation(r.Context(), h.DB, req.Name)
	if verr, ok := model.AsValidationError(err); ok {
		jsonProblems(w, verr.Problems)
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create location")
		return
	}

	jsonResponse(w, http.StatusCreated, location)
}

// ListTags handles GET /api/tags.
func (h *ReferenceHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := store.ListTags(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	jsonResponse(w, http.StatusOK, tags)
}

// CreateTag handles POST /api/tags.
func (h *ReferenceHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		IsDefault bool   `json:"is_default"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonProblems(w, []string{"name is required"})
		return
	}

	tag, err := store.CreateTag(r.Context(), h.DB, req.Name, req.IsDefault)
	if verr, ok := model.AsValidationError(err); ok {
		jsonProblems(w, verr.Problems)
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create tag")
		return
	}

	jsonResponse(w, http.StatusCreated, tag)
}
