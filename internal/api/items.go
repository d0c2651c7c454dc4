package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
	"github.com/erazemk/shramba/internal/validate"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type linkRequest struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

type itemRequest struct {
	Name              string        `json:"name"`
	DatePrepared      string        `json:"date_prepared"`
	ExpirationDate    string        `json:"expiration_date,omitempty"`
	StorageLocationID int64         `json:"storage_location_id"`
	Notes             string        `json:"notes,omitempty"`
	Amount            *float64      `json:"amount,omitempty"`
	AmountUnit        string        `json:"amount_unit,omitempty"`
	KeepPhoto         bool          `json:"keep_photo,omitempty"`
	Links             []linkRequest `json:"links,omitempty"`
	TagIDs            []int64       `json:"tag_ids,omitempty"`
}

// parse validates the request into revision attrs and clean links,
// accumulating every problem.
func (req *itemRequest) parse() (model.RevisionAttrs, []model.Link, []string) {
	var attrs model.RevisionAttrs
	var problems []string

	attrs.Name = req.Name
	attrs.StorageLocationID = req.StorageLocationID
	attrs.Notes = req.Notes
	attrs.Amount = req.Amount
	attrs.AmountUnit = req.AmountUnit

	if req.DatePrepared == "" {
		problems = append(problems, "date_prepared is required")
	} else if d, err := time.Parse("2006-01-02", req.DatePrepared); err != nil {
		problems = append(problems, "date_prepared must be a YYYY-MM-DD date")
	} else {
		attrs.DatePrepared = d
	}

	if req.ExpirationDate != "" {
		if d, err := time.Parse("2006-01-02", req.ExpirationDate); err != nil {
			problems = append(problems, "expiration_date must be a YYYY-MM-DD date")
		} else {
			attrs.ExpirationDate = &d
		}
	}

	problems = append(problems, validate.ItemAttrs(&attrs)...)

	urls := make([]string, len(req.Links))
	labels := make([]string, len(req.Links))
	for i, link := range req.Links {
		urls[i] = link.URL
		labels[i] = link.Label
	}
	links, linkProblems := validate.Links(urls, labels)
	problems = append(problems, linkProblems...)

	return attrs, links, problems
}

// List handles GET /api/items (the dashboard view).
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.DashboardFilter{
		Query:          r.URL.Query().Get("q"),
		IncludeDeleted: r.URL.Query().Get("show_deleted") != "",
	}
	if raw := r.URL.Query().Get("location"); raw != "" {
		filter.LocationID, _ = strconv.ParseInt(raw, 10, 64)
	}

	view, err := store.ListDashboard(r.Context(), h.DB, filter, time.Now().Truncate(24*time.Hour))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if view.Revisions == nil {
		view.Revisions = []model.Revision{}
	}
	jsonResponse(w, http.StatusOK, view)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	attrs, links, problems := req.parse()
	if len(problems) > 0 {
		jsonProblems(w, problems)
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, attrs, req.TagIDs, links)
	if errors.Is(err, model.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "storage location not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// getItem loads the item for the request's publicID, writing a 404 when it
// doesn't exist.
func (h *ItemsHandler) getItem(w http.ResponseWriter, r *http.Request) *model.Item {
	item, err := store.GetItemByPublicID(r.Context(), h.DB, r.PathValue("publicID"))
	if errors.Is(err, model.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil
	}
	return item
}

// Get handles GET /api/items/{publicID}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item := h.getItem(w, r)
	if item == nil {
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"item":       item,
		"latest":     item.LatestRevision(),
		"is_deleted": item.IsDeleted(),
	})
}

// Update handles PUT /api/items/{publicID}: appends an edit revision.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item := h.getItem(w, r)
	if item == nil {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	attrs, links, problems := req.parse()
	if len(problems) > 0 {
		jsonProblems(w, problems)
		return
	}

	attrs = model.EditAttrs(item.LatestRevision(), attrs, req.KeepPhoto)
	rev, err := store.AppendRevision(r.Context(), h.DB, item.ID, attrs, links)
	if errors.Is(err, model.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "storage location not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	if req.TagIDs != nil {
		if err := store.SetItemTags(r.Context(), h.DB, item.ID, req.TagIDs); err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to update item tags")
			return
		}
	}

	jsonResponse(w, http.StatusOK, rev)
}

// Delete handles DELETE /api/items/{publicID}: appends a delete revision.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item := h.getItem(w, r)
	if item == nil {
		return
	}

	attrs := model.DeleteAttrs(item.LatestRevision())
	if _, err := store.AppendRevision(r.Context(), h.DB, item.ID, attrs, nil); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Restore handles POST /api/items/{publicID}/restore.
func (h *ItemsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	item := h.getItem(w, r)
	if item == nil {
		return
	}

	source := model.RestoreSource(item)
	attrs := model.RestoreAttrs(source)
	rev, err := store.AppendRevision(r.Context(), h.DB, item.ID, attrs, source.Links)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to restore item")
		return
	}

	jsonResponse(w, http.StatusOK, rev)
}

// GetHistory handles GET /api/items/{publicID}/history.
func (h *ItemsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	item := h.getItem(w, r)
	if item == nil {
		return
	}

	history, err := store.History(r.Context(), h.DB, item.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item history")
		return
	}
	if history == nil {
		history = []model.Revision{}
	}
	jsonResponse(w, http.StatusOK, history)
}
