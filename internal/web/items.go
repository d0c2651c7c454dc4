package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/qr"
	"github.com/erazemk/shramba/internal/store"
)

// DashboardPage handles GET /.
func (s *Server) DashboardPage(w http.ResponseWriter, r *http.Request) {
	filter := store.DashboardFilter{
		Query:          r.URL.Query().Get("q"),
		IncludeDeleted: r.URL.Query().Get("show_deleted") != "",
	}
	if raw := r.URL.Query().Get("location"); raw != "" {
		filter.LocationID, _ = strconv.ParseInt(raw, 10, 64)
	}

	today := time.Now().Truncate(24 * time.Hour)
	view, err := store.ListDashboard(r.Context(), s.DB, filter, today)
	if err != nil {
		slog.Error("failed to list dashboard", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	locations, err := store.ListLocations(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		View             *store.DashboardView
		Locations        []model.StorageLocation
		Query            string
		SelectedLocation int64
		ShowDeleted      bool
		Today            time.Time
	}{
		PageData:         PageData{Title: "Food Storage"},
		View:             view,
		Locations:        locations,
		Query:            filter.Query,
		SelectedLocation: filter.LocationID,
		ShowDeleted:      filter.IncludeDeleted,
		Today:            today,
	})
}

// itemFormPage is the data for the create/edit/reuse form templates.
type itemFormPage struct {
	PageData
	Item      *model.Item
	Locations []model.StorageLocation
	Tags      []model.Tag
	Form      *itemForm
	PrevPhoto string
}

func (s *Server) renderItemForm(w http.ResponseWriter, r *http.Request, template, title string, item *model.Item, form *itemForm, prevPhoto string) {
	locations, err := store.ListLocations(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
	}
	tags, err := store.ListTags(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list tags", "error", err)
	}

	s.Templates.Render(w, template, &itemFormPage{
		PageData:  PageData{Title: title, Errors: form.Problems},
		Item:      item,
		Locations: locations,
		Tags:      tags,
		Form:      form,
		PrevPhoto: prevPhoto,
	})
}

// ItemCreateForm handles GET /items/new.
func (s *Server) ItemCreateForm(w http.ResponseWriter, r *http.Request) {
	today := time.Now().Truncate(24 * time.Hour)
	exp := today.AddDate(0, 0, 7)
	form := &itemForm{
		Attrs: model.RevisionAttrs{DatePrepared: today, ExpirationDate: &exp},
	}
	s.renderItemForm(w, r, "item_create.html", "New item", nil, form, "")
}

// ItemCreateSubmit handles POST /items.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	form := parseItemForm(r)
	s.savePhotoUpload(r, form)

	if len(form.Problems) > 0 {
		s.renderItemForm(w, r, "item_create.html", "New item", nil, form, "")
		return
	}

	item, err := store.CreateItem(r.Context(), s.DB, form.Attrs, form.TagIDs, form.Links)
	if errors.Is(err, model.ErrNotFound) {
		form.Problems = append(form.Problems, "Storage location not found.")
		s.renderItemForm(w, r, "item_create.html", "New item", nil, form, "")
		return
	}
	if err != nil {
		slog.Error("failed to create item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("item created", "item", item.PublicID, "name", form.Attrs.Name)
	http.Redirect(w, r, "/i/"+item.PublicID, http.StatusSeeOther)
}

// getItem loads the item for the request's publicID path value, writing a
// 404 when it doesn't exist.
func (s *Server) getItem(w http.ResponseWriter, r *http.Request) *model.Item {
	item, err := store.GetItemByPublicID(r.Context(), s.DB, r.PathValue("publicID"))
	if errors.Is(err, model.ErrNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil
	}
	return item
}

// ItemDetailPage handles GET /i/{publicID}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}
	rev := item.LatestRevision()

	s.Templates.Render(w, "item_detail.html", &struct {
		PageData
		Item      *model.Item
		Rev       *model.Revision
		IsDeleted bool
		ItemURL   string
		Today     time.Time
	}{
		PageData:  PageData{Title: rev.Name},
		Item:      item,
		Rev:       rev,
		IsDeleted: item.IsDeleted(),
		ItemURL:   qr.ItemURL(s.BaseURL, item.PublicID),
		Today:     time.Now().Truncate(24 * time.Hour),
	})
}

// ItemQRImage handles GET /i/{publicID}/qr.png.
func (s *Server) ItemQRImage(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}

	png, err := qr.EncodePNG(qr.ItemURL(s.BaseURL, item.PublicID))
	if err != nil {
		slog.Error("failed to encode QR code", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(png); err != nil {
		slog.Error("failed to write QR response", "error", err)
	}
}

// ItemLabelPage handles GET /i/{publicID}/label (printable label).
func (s *Server) ItemLabelPage(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}

	s.Templates.Render(w, "item_label.html", &struct {
		PageData
		Item  *model.Item
		Rev   *model.Revision
		QRURL string
	}{
		PageData: PageData{Title: "Label"},
		Item:     item,
		Rev:      item.LatestRevision(),
		QRURL:    "/i/" + item.PublicID + "/qr.png",
	})
}

// formFromRevision prefills the form from a revision and the item's tags.
func formFromRevision(rev *model.Revision, tags []model.Tag) *itemForm {
	form := &itemForm{
		Attrs: model.RevisionAttrs{
			Name:              rev.Name,
			DatePrepared:      rev.DatePrepared,
			ExpirationDate:    rev.ExpirationDate,
			StorageLocationID: rev.StorageLocationID,
			Notes:             rev.Notes,
			Amount:            rev.Amount,
			AmountUnit:        rev.AmountUnit,
		},
		KeepPhoto: rev.PhotoFilename != "",
	}
	for _, link := range rev.Links {
		form.Links = append(form.Links, link)
		form.LinkURLs = append(form.LinkURLs, link.URL)
		form.LinkLabels = append(form.LinkLabels, link.Label)
	}
	for _, tag := range tags {
		form.TagIDs = append(form.TagIDs, tag.ID)
	}
	return form
}

// ItemEditForm handles GET /i/{publicID}/edit.
func (s *Server) ItemEditForm(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}

	// Prefill from the latest active revision so editing a deleted item
	// starts from its last useful state.
	rev := model.RestoreSource(item)
	form := formFromRevision(rev, item.Tags)
	s.renderItemForm(w, r, "item_edit.html", "Edit "+rev.Name, item, form, rev.PhotoFilename)
}

// ItemEditSubmit handles POST /i/{publicID}/edit.
func (s *Server) ItemEditSubmit(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}
	prev := item.LatestRevision()

	form := parseItemForm(r)
	s.savePhotoUpload(r, form)

	if len(form.Problems) > 0 {
		prevPhoto := ""
		if prev != nil {
			prevPhoto = prev.PhotoFilename
		}
		s.renderItemForm(w, r, "item_edit.html", "Edit item", item, form, prevPhoto)
		return
	}

	attrs := model.EditAttrs(prev, form.Attrs, form.KeepPhoto)
	if _, err := store.AppendRevision(r.Context(), s.DB, item.ID, attrs, form.Links); err != nil {
		s.appendError(w, r, item, "item_edit.html", "Edit item", form, err)
		return
	}

	if err := store.SetItemTags(r.Context(), s.DB, item.ID, form.TagIDs); err != nil {
		slog.Error("failed to update item tags", "error", err)
	}

	slog.Info("item edited", "item", item.PublicID)
	http.Redirect(w, r, "/i/"+item.PublicID, http.StatusSeeOther)
}

// appendError renders a failed append: unresolved location references come
// back as form problems, anything else is a server error.
func (s *Server) appendError(w http.ResponseWriter, r *http.Request, item *model.Item, template, title string, form *itemForm, err error) {
	if errors.Is(err, model.ErrNotFound) {
		form.Problems = append(form.Problems, "Storage location not found.")
		s.renderItemForm(w, r, template, title, item, form, "")
		return
	}
	slog.Error("failed to append revision", "item", item.PublicID, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// ItemAmountSubmit handles POST /i/{publicID}/amount (quick amount update).
func (s *Server) ItemAmountSubmit(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}
	prev := item.LatestRevision()

	var amount *float64
	if raw := r.FormValue("amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "amount must be a number", http.StatusBadRequest)
			return
		}
		amount = &parsed
	}
	unit := r.FormValue("amount_unit")
	if unit == "" {
		unit = prev.AmountUnit
	}

	attrs := model.QuickAmountAttrs(prev, amount, unit)
	if _, err := store.AppendRevision(r.Context(), s.DB, item.ID, attrs, prev.Links); err != nil {
		slog.Error("failed to update amount", "item", item.PublicID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("item amount updated", "item", item.PublicID)
	http.Redirect(w, r, "/i/"+item.PublicID, http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /i/{publicID}/delete (soft delete).
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}

	attrs := model.DeleteAttrs(item.LatestRevision())
	if _, err := store.AppendRevision(r.Context(), s.DB, item.ID, attrs, nil); err != nil {
		slog.Error("failed to delete item", "item", item.PublicID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("item deleted", "item", item.PublicID)
	http.Redirect(w, r, "/i/"+item.PublicID, http.StatusSeeOther)
}

// ItemRestoreSubmit handles POST /i/{publicID}/restore.
func (s *Server) ItemRestoreSubmit(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}

	source := model.RestoreSource(item)
	attrs := model.RestoreAttrs(source)
	if _, err := store.AppendRevision(r.Context(), s.DB, item.ID, attrs, source.Links); err != nil {
		slog.Error("failed to restore item", "item", item.PublicID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("item restored", "item", item.PublicID)
	http.Redirect(w, r, "/i/"+item.PublicID, http.StatusSeeOther)
}

// ItemReuseForm handles GET /i/{publicID}/reuse (reuse a label after delete).
func (s *Server) ItemReuseForm(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}

	today := time.Now().Truncate(24 * time.Hour)
	exp := today.AddDate(0, 0, 7)
	form := &itemForm{
		Attrs: model.RevisionAttrs{DatePrepared: today, ExpirationDate: &exp},
	}
	s.renderItemForm(w, r, "item_reuse.html", "Reuse label", item, form, "")
}

// ItemReuseSubmit handles POST /i/{publicID}/reuse. Unlike restore, reuse
// starts the label over with fresh values.
func (s *Server) ItemReuseSubmit(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}

	form := parseItemForm(r)
	s.savePhotoUpload(r, form)

	if len(form.Problems) > 0 {
		s.renderItemForm(w, r, "item_reuse.html", "Reuse label", item, form, "")
		return
	}

	attrs := model.ReuseAttrs(form.Attrs)
	if _, err := store.AppendRevision(r.Context(), s.DB, item.ID, attrs, form.Links); err != nil {
		s.appendError(w, r, item, "item_reuse.html", "Reuse label", form, err)
		return
	}

	slog.Info("item label reused", "item", item.PublicID)
	http.Redirect(w, r, "/i/"+item.PublicID, http.StatusSeeOther)
}

// ItemHistoryPage handles GET /i/{publicID}/history.
func (s *Server) ItemHistoryPage(w http.ResponseWriter, r *http.Request) {
	item := s.getItem(w, r)
	if item == nil {
		return
	}

	history, err := store.History(r.Context(), s.DB, item.ID)
	if err != nil {
		slog.Error("failed to get item history", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "item_history.html", &struct {
		PageData
		Item      *model.Item
		Revisions []model.Revision
	}{
		PageData:  PageData{Title: "History"},
		Item:      item,
		Revisions: history,
	})
}
