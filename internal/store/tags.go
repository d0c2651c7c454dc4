package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/shramba/internal/model"
)

// ListTags returns all tags ordered by name.
func ListTags(ctx context.Context, db *sql.DB) ([]model.Tag, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, is_default, created_at FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// GetTag returns a tag by ID, or model.ErrNotFound.
func GetTag(ctx context.Context, db *sql.DB, id int64) (*model.Tag, error) {
	tag := &model.Tag{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, is_default, created_at FROM tags WHERE id = ?`, id,
	).Scan(&tag.ID, &tag.Name, &tag.IsDefault, &tag.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag: %w", err)
	}
	return tag, nil
}

// CreateTag creates a tag with a unique name.
func CreateTag(ctx context.Context, db *sql.DB, name string, isDefault bool) (*model.Tag, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO tags (name, is_default) VALUES (?, ?)`, name, isDefault,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewValidationError([]string{fmt.Sprintf("'%s' already exists.", name)})
		}
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting tag id: %w", err)
	}
	return GetTag(ctx, db, id)
}

// ListItemTags returns the tags assigned to an item, ordered by name.
func ListItemTags(ctx context.Context, db *sql.DB, itemID int64) ([]model.Tag, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT t.id, t.name, t.is_default, t.created_at
		 FROM tags t
		 JOIN item_tags it ON it.tag_id = t.id
		 WHERE it.item_id = ?
		 ORDER BY t.name`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// SetItemTags replaces an item's tag assignments. Tag assignments are
// current-item state, not versioned with the revision chain.
func SetItemTags(ctx context.Context, db *sql.DB, itemID int64, tagIDs []int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM item_tags WHERE item_id = ?`, itemID,
	); err != nil {
		return fmt.Errorf("clearing item tags: %w", err)
	}

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO item_tags (item_id, tag_id) VALUES (?, ?)`, itemID, tagID,
		); err != nil {
			return fmt.Errorf("assigning tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tag update: %w", err)
	}
	return nil
}

// SeedTags inserts the default tags that don't exist yet. Safe to run on
// every startup.
func SeedTags(ctx context.Context, db *sql.DB) error {
	for _, name := range model.DefaultTags {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO tags (name, is_default) VALUES (?, 1)
			 ON CONFLICT (name) DO NOTHING`, name,
		); err != nil {
			return fmt.Errorf("seeding tag %q: %w", name, err)
		}
	}
	return nil
}

func scanTags(rows *sql.Rows) ([]model.Tag, error) {
	var tags []model.Tag
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.IsDefault, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
