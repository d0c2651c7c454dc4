package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/shramba/internal/photo"
	webembed "github.com/erazemk/shramba/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"photoURL": photo.URLFor,
		"fmtDate": func(d time.Time) string {
			return d.Format("Jan 2, 2006")
		},
		"fmtDatePtr": func(d *time.Time) string {
			if d == nil {
				return "—"
			}
			return d.Format("Jan 2, 2006")
		},
		"inputDate": func(d time.Time) string {
			return d.Format("2006-01-02")
		},
		"inputDatePtr": func(d *time.Time) string {
			if d == nil {
				return ""
			}
			return d.Format("2006-01-02")
		},
		"fmtAmount": func(amount *float64, unit string) string {
			if amount == nil {
				return ""
			}
			s := fmt.Sprintf("%g", *amount)
			if unit != "" {
				s += " " + unit
			}
			return s
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	// Read layout.
	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"dashboard.html",
		"item_create.html",
		"item_detail.html",
		"item_edit.html",
		"item_reuse.html",
		"item_history.html",
		"item_label.html",
		"locations.html",
		"tags.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title  string
	Errors []string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	BaseURL   string
	Photos    *photo.Store
}
