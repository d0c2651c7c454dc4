package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/shramba/internal/model"
)

// ListLocations returns all storage locations ordered by name.
func ListLocations(ctx context.Context, db *sql.DB) ([]model.StorageLocation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at FROM storage_locations ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing storage locations: %w", err)
	}
	defer rows.Close()

	var locations []model.StorageLocation
	for rows.Next() {
		var loc model.StorageLocation
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning storage location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// GetLocation returns a storage location by ID, or model.ErrNotFound.
func GetLocation(ctx context.Context, db *sql.DB, id int64) (*model.StorageLocation, error) {
	loc := &model.StorageLocation{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM storage_locations WHERE id = ?`, id,
	).Scan(&loc.ID, &loc.Name, &loc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting storage location: %w", err)
	}
	return loc, nil
}

// CreateLocation creates a storage location with a unique name.
func CreateLocation(ctx context.Context, db *sql.DB, name string) (*model.StorageLocation, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO storage_locations (name) VALUES (?)`, name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewValidationError([]string{fmt.Sprintf("'%s' already exists.", name)})
		}
		return nil, fmt.Errorf("creating storage location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting storage location id: %w", err)
	}
	return GetLocation(ctx, db, id)
}

// SeedLocations inserts the default storage locations that don't exist yet.
// Safe to run on every startup.
func SeedLocations(ctx context.Context, db *sql.DB) error {
	for _, name := range model.DefaultLocations {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO storage_locations (name) VALUES (?)
			 ON CONFLICT (name) DO NOTHING`, name,
		); err != nil {
			return fmt.Errorf("seeding location %q: %w", name, err)
		}
	}
	return nil
}
