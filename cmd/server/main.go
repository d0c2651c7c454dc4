package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/erazemk/shramba/internal/api"
	"github.com/erazemk/shramba/internal/config"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/photo"
	"github.com/erazemk/shramba/internal/store"
	"github.com/erazemk/shramba/internal/web"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database.
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	// Run migrations (idempotent).
	if err := db.Migrate(database); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed reference data (idempotent).
	ctx := context.Background()
	if err := store.SeedLocations(ctx, database); err != nil {
		log.Fatalf("Failed to seed storage locations: %v", err)
	}
	if err := store.SeedTags(ctx, database); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}

	photos, err := photo.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to set up photo storage: %v", err)
	}

	// Set up routers.
	apiRouter := api.NewRouter(database)
	webRouter, err := web.NewRouter(database, cfg.BaseURL, photos)
	if err != nil {
		log.Fatalf("Failed to set up web router: %v", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	handler := web.LoggingMiddleware(mux)

	slog.Info("server listening", "addr", cfg.Addr, "base_url", cfg.BaseURL)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
