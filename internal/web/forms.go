package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/photo"
	"github.com/erazemk/shramba/internal/validate"
)

// itemForm carries a parsed item form submission plus the raw link values
// so a failed submission can be re-rendered with the user's input intact.
type itemForm struct {
	Attrs      model.RevisionAttrs
	Links      []model.Link
	TagIDs     []int64
	KeepPhoto  bool
	LinkURLs   []string
	LinkLabels []string
	Problems   []string
}

// HasTag reports whether the submitted form selected the given tag.
func (f *itemForm) HasTag(tagID int64) bool {
	for _, id := range f.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// parseItemForm reads and validates the shared item form fields. All
// problems are accumulated; nothing is persisted until the caller sees an
// empty problem list.
func parseItemForm(r *http.Request) *itemForm {
	// Item forms are multipart because of the photo field, but plain
	// urlencoded posts work too.
	if err := r.ParseMultipartForm(photo.MaxSizeBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return &itemForm{Problems: []string{"Could not read the submitted form."}}
	}

	f := &itemForm{
		LinkURLs:   r.Form["link_url"],
		LinkLabels: r.Form["link_label"],
		KeepPhoto:  r.FormValue("keep_photo") != "",
	}

	f.Attrs.Name = r.FormValue("name")
	f.Attrs.Notes = r.FormValue("notes")
	f.Attrs.AmountUnit = r.FormValue("amount_unit")

	if raw := r.FormValue("date_prepared"); raw == "" {
		f.Problems = append(f.Problems, "Date prepared is required.")
	} else if d, err := time.Parse("2006-01-02", raw); err != nil {
		f.Problems = append(f.Problems, "Date prepared must be a valid date.")
	} else {
		f.Attrs.DatePrepared = d
	}

	if raw := r.FormValue("expiration_date"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err != nil {
			f.Problems = append(f.Problems, "Expiration date must be a valid date.")
		} else {
			f.Attrs.ExpirationDate = &d
		}
	}

	if raw := r.FormValue("storage_location_id"); raw == "" {
		f.Problems = append(f.Problems, "Storage location is required.")
	} else if id, err := strconv.ParseInt(raw, 10, 64); err != nil {
		f.Problems = append(f.Problems, "Storage location is invalid.")
	} else {
		f.Attrs.StorageLocationID = id
	}

	if raw := r.FormValue("amount"); raw != "" {
		if amount, err := strconv.ParseFloat(raw, 64); err != nil {
			f.Problems = append(f.Problems, "Amount must be a number.")
		} else {
			f.Attrs.Amount = &amount
		}
	}

	for _, raw := range r.Form["tag_id"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.TagIDs = append(f.TagIDs, id)
		}
	}

	f.Problems = append(f.Problems, validate.ItemAttrs(&f.Attrs)...)

	links, linkProblems := validate.Links(f.LinkURLs, f.LinkLabels)
	f.Links = links
	f.Problems = append(f.Problems, linkProblems...)

	return f
}

// savePhotoUpload stores an uploaded photo if one was submitted. A missing
// file is not an error; storage failures become form problems.
func (s *Server) savePhotoUpload(r *http.Request, f *itemForm) {
	file, header, err := r.FormFile("photo")
	if err != nil {
		return // no upload
	}
	defer file.Close()
	if header.Filename == "" {
		return
	}

	filename, err := s.Photos.Save(file, header.Filename)
	if err != nil {
		f.Problems = append(f.Problems, err.Error())
		return
	}
	f.Attrs.PhotoFilename = filename
}
