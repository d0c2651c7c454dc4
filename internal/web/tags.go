package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

// TagsPage handles GET /tags.
func (s *Server) TagsPage(w http.ResponseWriter, r *http.Request) {
	s.renderTags(w, r, nil)
}

func (s *Server) renderTags(w http.ResponseWriter, r *http.Request, errs []string) {
	tags, err := store.ListTags(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list tags", "error", err)
	}

	s.Templates.Render(w, "tags.html", &struct {
		PageData
		Tags []model.Tag
	}{
		PageData: PageData{Title: "Tags", Errors: errs},
		Tags:     tags,
	})
}

// TagCreateSubmit handles POST /tags.
func (s *Server) TagCreateSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	isDefault := r.FormValue("is_default") != ""
	if name == "" {
		s.renderTags(w, r, []string{"Name is required."})
		return
	}

	if _, err := store.CreateTag(r.Context(), s.DB, name, isDefault); err != nil {
		if verr, ok := model.AsValidationError(err); ok {
			s.renderTags(w, r, verr.Problems)
			return
		}
		slog.Error("failed to create tag", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("tag created", "name", name, "default", isDefault)
	http.Redirect(w, r, "/tags", http.StatusSeeOther)
}
