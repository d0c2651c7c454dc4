package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{DB: db}
	referenceHandler := &ReferenceHandler{DB: db}

	// Items.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("GET /api/items/{publicID}", itemsHandler.Get)
	mux.HandleFunc("PUT /api/items/{publicID}", itemsHandler.Update)
	mux.HandleFunc("DELETE /api/items/{publicID}", itemsHandler.Delete)
	mux.HandleFunc("POST /api/items/{publicID}/restore", itemsHandler.Restore)
	mux.HandleFunc("GET /api/items/{publicID}/history", itemsHandler.GetHistory)

	// Reference data.
	mux.HandleFunc("GET /api/locations", referenceHandler.ListLocations)
	mux.HandleFunc("POST /api/locations", referenceHandler.CreateLocation)
	mux.HandleFunc("GET /api/tags", referenceHandler.ListTags)
	mux.HandleFunc("POST /api/tags", referenceHandler.CreateTag)

	return mux
}
