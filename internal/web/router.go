package web

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/shramba/internal/photo"
	webembed "github.com/erazemk/shramba/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, baseURL string, photos *photo.Store) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		BaseURL:   baseURL,
		Photos:    photos,
	}

	mux := http.NewServeMux()

	// Static assets and uploaded photos.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(photos.Dir))))

	// Dashboard.
	mux.HandleFunc("GET /{$}", s.DashboardPage)

	// Item creation.
	mux.HandleFunc("GET /items/new", s.ItemCreateForm)
	mux.HandleFunc("POST /items", s.ItemCreateSubmit)

	// Per-item pages, addressed by the public id printed on the label.
	mux.HandleFunc("GET /i/{publicID}", s.ItemDetailPage)
	mux.HandleFunc("GET /i/{publicID}/qr.png", s.ItemQRImage)
	mux.HandleFunc("GET /i/{publicID}/label", s.ItemLabelPage)
	mux.HandleFunc("GET /i/{publicID}/edit", s.ItemEditForm)
	mux.HandleFunc("POST /i/{publicID}/edit", s.ItemEditSubmit)
	mux.HandleFunc("POST /i/{publicID}/amount", s.ItemAmountSubmit)
	mux.HandleFunc("POST /i/{publicID}/delete", s.ItemDeleteSubmit)
	mux.HandleFunc("POST /i/{publicID}/restore", s.ItemRestoreSubmit)
	mux.HandleFunc("GET /i/{publicID}/reuse", s.ItemReuseForm)
	mux.HandleFunc("POST /i/{publicID}/reuse", s.ItemReuseSubmit)
	mux.HandleFunc("GET /i/{publicID}/history", s.ItemHistoryPage)

	// Reference data.
	mux.HandleFunc("GET /locations", s.LocationsPage)
	mux.HandleFunc("POST /locations", s.LocationCreateSubmit)
	mux.HandleFunc("GET /tags", s.TagsPage)
	mux.HandleFunc("POST /tags", s.TagCreateSubmit)

	return mux, nil
}
