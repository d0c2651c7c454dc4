package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS storage_locations (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tags (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS food_items (
    id         INTEGER PRIMARY KEY,
    public_id  TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS item_revisions (
    id                  INTEGER PRIMARY KEY,
    item_id             INTEGER NOT NULL REFERENCES food_items(id),
    revision_num        INTEGER NOT NULL,
    name                TEXT NOT NULL,
    date_prepared       TEXT NOT NULL,
    expiration_date     TEXT,
    storage_location_id INTEGER NOT NULL REFERENCES storage_locations(id),
    photo_filename      TEXT,
    notes               TEXT,
    amount              REAL,
    amount_unit         TEXT,
    is_deleted          INTEGER NOT NULL DEFAULT 0,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (item_id, revision_num)
);

CREATE INDEX IF NOT EXISTS idx_item_revisions_item
    ON item_revisions(item_id);

CREATE TABLE IF NOT EXISTS revision_links (
    id          INTEGER PRIMARY KEY,
    revision_id INTEGER NOT NULL REFERENCES item_revisions(id) ON DELETE CASCADE,
    url         TEXT NOT NULL,
    label       TEXT
);

CREATE INDEX IF NOT EXISTS idx_revision_links_revision
    ON revision_links(revision_id);

CREATE TABLE IF NOT EXISTS item_tags (
    item_id INTEGER NOT NULL REFERENCES food_items(id),
    tag_id  INTEGER NOT NULL REFERENCES tags(id),
    PRIMARY KEY (item_id, tag_id)
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
