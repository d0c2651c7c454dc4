package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/shramba/internal/model"
)

// appendRetries is how many times a revision insert is retried when two
// writers race for the same revision number. The UNIQUE(item_id,
// revision_num) constraint detects the race; recomputing max+1 in a fresh
// transaction resolves it.
const appendRetries = 3

// CreateItem creates a new item with a fresh public id and its first
// revision, links and tag associations in one transaction. Returns
// model.ErrNotFound if the storage location does not resolve.
func CreateItem(ctx context.Context, db *sql.DB, attrs model.RevisionAttrs, tagIDs []int64, links []model.Link) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkLocation(ctx, tx, attrs.StorageLocationID); err != nil {
		return nil, err
	}

	// Generated ids are 12 chars of crypto randomness; a collision is
	// vanishingly rare but the UNIQUE index catches it, so retry.
	var itemID int64
	var publicID string
	for attempt := 0; ; attempt++ {
		publicID, err = generatePublicID()
		if err != nil {
			return nil, fmt.Errorf("generating public id: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO food_items (public_id) VALUES (?)`, publicID,
		)
		if err == nil {
			itemID, err = result.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("getting item id: %w", err)
			}
			break
		}
		if !isUniqueViolation(err) || attempt >= appendRetries {
			return nil, fmt.Errorf("creating item: %w", err)
		}
	}

	if _, err := insertRevision(ctx, tx, itemID, attrs, links); err != nil {
		return nil, err
	}

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO item_tags (item_id, tag_id) VALUES (?, ?)`, itemID, tagID,
		); err != nil {
			return nil, fmt.Errorf("tagging item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item creation: %w", err)
	}

	return GetItemByPublicID(ctx, db, publicID)
}

// AppendRevision appends a new revision to an item. The revision number is
// computed inside the same transaction as the insert, and the whole append
// (revision plus links) either persists or doesn't. Number races against
// concurrent appends are retried internally.
func AppendRevision(ctx context.Context, db *sql.DB, itemID int64, attrs model.RevisionAttrs, links []model.Link) (*model.Revision, error) {
	var lastErr error
	for attempt := 0; attempt < appendRetries; attempt++ {
		rev, err := appendRevisionOnce(ctx, db, itemID, attrs, links)
		if err == nil {
			return rev, nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("appending revision: %w", lastErr)
}

func appendRevisionOnce(ctx context.Context, db *sql.DB, itemID int64, attrs model.RevisionAttrs, links []model.Link) (*model.Revision, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkLocation(ctx, tx, attrs.StorageLocationID); err != nil {
		return nil, err
	}

	rev, err := insertRevision(ctx, tx, itemID, attrs, links)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing revision: %w", err)
	}
	return rev, nil
}

// insertRevision computes max(revision_num)+1 and inserts the revision and
// its links. Must run inside the caller's transaction: the number
// computation and the insert form the critical section that keeps
// numbering contiguous.
func insertRevision(ctx context.Context, tx *sql.Tx, itemID int64, attrs model.RevisionAttrs, links []model.Link) (*model.Revision, error) {
	var maxNum int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(revision_num), 0) FROM item_revisions WHERE item_id = ?`,
		itemID,
	).Scan(&maxNum)
	if err != nil {
		return nil, fmt.Errorf("reading latest revision number: %w", err)
	}
	num := maxNum + 1

	result, err := tx.ExecContext(ctx,
		`INSERT INTO item_revisions
		     (item_id, revision_num, name, date_prepared, expiration_date,
		      storage_location_id, photo_filename, notes, amount, amount_unit, is_deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		itemID, num, attrs.Name,
		formatDate(attrs.DatePrepared), formatNullDate(attrs.ExpirationDate),
		attrs.StorageLocationID, nullString(attrs.PhotoFilename), nullString(attrs.Notes),
		nullFloat(attrs.Amount), nullString(attrs.AmountUnit), attrs.IsDeleted,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrConflict
		}
		return nil, fmt.Errorf("inserting revision: %w", err)
	}

	revID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting revision id: %w", err)
	}

	for _, link := range links {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO revision_links (revision_id, url, label) VALUES (?, ?, ?)`,
			revID, link.URL, nullString(link.Label),
		); err != nil {
			return nil, fmt.Errorf("inserting revision link: %w", err)
		}
	}

	rev := &model.Revision{
		ID:                revID,
		ItemID:            itemID,
		RevisionNum:       num,
		Name:              attrs.Name,
		DatePrepared:      attrs.DatePrepared,
		ExpirationDate:    attrs.ExpirationDate,
		StorageLocationID: attrs.StorageLocationID,
		PhotoFilename:     attrs.PhotoFilename,
		Notes:             attrs.Notes,
		Amount:            attrs.Amount,
		AmountUnit:        attrs.AmountUnit,
		IsDeleted:         attrs.IsDeleted,
		CreatedAt:         time.Now().UTC(),
	}
	for _, link := range links {
		rev.Links = append(rev.Links, model.Link{RevisionID: revID, URL: link.URL, Label: link.Label})
	}
	return rev, nil
}

// GetItemByPublicID returns an item with its full revision chain, links and
// tags. Returns model.ErrNotFound for an unknown public id.
func GetItemByPublicID(ctx context.Context, db *sql.DB, publicID string) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT id, public_id, created_at FROM food_items WHERE public_id = ?`,
		publicID,
	).Scan(&item.ID, &item.PublicID, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT r.id, r.item_id, r.revision_num, r.name, r.date_prepared,
		        r.expiration_date, r.storage_location_id, r.photo_filename,
		        r.notes, r.amount, r.amount_unit, r.is_deleted, r.created_at,
		        l.name AS location_name
		 FROM item_revisions r
		 JOIN storage_locations l ON l.id = r.storage_location_id
		 WHERE r.item_id = ?
		 ORDER BY r.revision_num`, item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	defer rows.Close()

	item.Revisions, err = scanRevisions(rows, false)
	if err != nil {
		return nil, err
	}
	for i := range item.Revisions {
		item.Revisions[i].ItemPublicID = item.PublicID
	}

	if err := attachLinks(ctx, db, item.Revisions); err != nil {
		return nil, err
	}

	item.Tags, err = ListItemTags(ctx, db, item.ID)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// History returns an item's revisions newest first, including deleted ones,
// with links attached. Used for audit browsing only.
func History(ctx context.Context, db *sql.DB, itemID int64) ([]model.Revision, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT r.id, r.item_id, r.revision_num, r.name, r.date_prepared,
		        r.expiration_date, r.storage_location_id, r.photo_filename,
		        r.notes, r.amount, r.amount_unit, r.is_deleted, r.created_at,
		        l.name AS location_name
		 FROM item_revisions r
		 JOIN storage_locations l ON l.id = r.storage_location_id
		 WHERE r.item_id = ?
		 ORDER BY r.revision_num DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item history: %w", err)
	}
	defer rows.Close()

	revisions, err := scanRevisions(rows, false)
	if err != nil {
		return nil, err
	}
	if err := attachLinks(ctx, db, revisions); err != nil {
		return nil, err
	}
	return revisions, nil
}

// attachLinks loads the links for every revision in the slice.
func attachLinks(ctx context.Context, db *sql.DB, revisions []model.Revision) error {
	byID := make(map[int64]*model.Revision, len(revisions))
	for i := range revisions {
		byID[revisions[i].ID] = &revisions[i]
	}
	if len(byID) == 0 {
		return nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT rl.id, rl.revision_id, rl.url, rl.label
		 FROM revision_links rl
		 JOIN item_revisions r ON r.id = rl.revision_id
		 WHERE r.item_id = (SELECT item_id FROM item_revisions WHERE id = ?)
		 ORDER BY rl.id`, revisions[0].ID,
	)
	if err != nil {
		return fmt.Errorf("listing revision links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var link model.Link
		var label sql.NullString
		if err := rows.Scan(&link.ID, &link.RevisionID, &link.URL, &label); err != nil {
			return fmt.Errorf("scanning revision link: %w", err)
		}
		link.Label = label.String
		if rev, ok := byID[link.RevisionID]; ok {
			rev.Links = append(rev.Links, link)
		}
	}
	return rows.Err()
}

// scanRevisions scans revision rows. When withPublicID is set, the query is
// expected to also select the owning item's public id as the last column.
func scanRevisions(rows *sql.Rows, withPublicID bool) ([]model.Revision, error) {
	var revisions []model.Revision
	for rows.Next() {
		var rev model.Revision
		var datePrepared string
		var expiration, photo, notes, unit sql.NullString
		var amount sql.NullFloat64

		dest := []any{
			&rev.ID, &rev.ItemID, &rev.RevisionNum, &rev.Name, &datePrepared,
			&expiration, &rev.StorageLocationID, &photo, &notes, &amount,
			&unit, &rev.IsDeleted, &rev.CreatedAt, &rev.LocationName,
		}
		if withPublicID {
			dest = append(dest, &rev.ItemPublicID)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning revision: %w", err)
		}

		var err error
		rev.DatePrepared, err = parseDate(datePrepared)
		if err != nil {
			return nil, err
		}
		rev.ExpirationDate, err = parseNullDate(expiration)
		if err != nil {
			return nil, err
		}
		rev.PhotoFilename = photo.String
		rev.Notes = notes.String
		rev.AmountUnit = unit.String
		if amount.Valid {
			rev.Amount = &amount.Float64
		}

		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

// checkLocation verifies a storage location reference resolves.
func checkLocation(ctx context.Context, tx *sql.Tx, locationID int64) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM storage_locations WHERE id = ?`, locationID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking storage location: %w", err)
	}
	return nil
}

// generatePublicID returns a 12-character URL-safe random token.
func generatePublicID() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Dates are stored as ISO YYYY-MM-DD text and parsed at the scan boundary.

const dateLayout = "2006-01-02"

func formatDate(d time.Time) string {
	return d.Format(dateLayout)
}

func formatNullDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return d, nil
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := parseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
