package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

// LocationsPage handles GET /locations.
func (s *Server) LocationsPage(w http.ResponseWriter, r *http.Request) {
	s.renderLocations(w, r, nil)
}

func (s *Server) renderLocations(w http.ResponseWriter, r *http.Request, errs []string) {
	locations, err := store.ListLocations(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
	}

	s.Templates.Render(w, "locations.html", &struct {
		PageData
		Locations []model.StorageLocation
	}{
		PageData:  PageData{Title: "Storage locations", Errors: errs},
		Locations: locations,
	})
}

// LocationCreateSubmit handles POST /locations.
func (s *Server) LocationCreateSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		s.renderLocations(w, r, []string{"Name is required."})
		return
	}

	if _, err := store.CreateLocation(r.Context(), s.DB, name); err != nil {
		if verr, ok := model.AsValidationError(err); ok {
			s.renderLocations(w, r, verr.Problems)
			return
		}
		slog.Error("failed to create location", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("location created", "name", name)
	http.Redirect(w, r, "/locations", http.StatusSeeOther)
}
