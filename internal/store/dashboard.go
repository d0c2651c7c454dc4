package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/erazemk/shramba/internal/model"
)

// ExpiringSoonDays is the window for the "expiring soon" dashboard bucket.
const ExpiringSoonDays = 3

// DashboardFilter narrows the dashboard listing.
type DashboardFilter struct {
	// Query is a case-insensitive substring match on the latest revision name.
	Query string
	// LocationID filters to one storage location when non-zero.
	LocationID int64
	// IncludeDeleted includes items whose latest revision is deleted.
	IncludeDeleted bool
}

// LocationGroup is the dashboard bucket for one storage location.
type LocationGroup struct {
	LocationID   int64            `json:"location_id"`
	LocationName string           `json:"location_name"`
	Revisions    []model.Revision `json:"revisions"`
}

// TagGroup is the dashboard bucket for one default tag.
type TagGroup struct {
	Tag       model.Tag        `json:"tag"`
	Revisions []model.Revision `json:"revisions"`
}

// DashboardView is the aggregated dashboard: the filtered latest revisions
// in expiration order plus the three groupings derived from that same set.
type DashboardView struct {
	Revisions    []model.Revision `json:"revisions"`
	ByLocation   []LocationGroup  `json:"by_location"`
	ByDefaultTag []TagGroup       `json:"by_default_tag"`
	ExpiringSoon []model.Revision `json:"expiring_soon"`
}

// ListDashboard computes the dashboard view. Only each item's latest
// revision can appear in the output; history is invisible here. Ordering is
// total and stable: expiration date ascending with nulls last, then
// revision id.
func ListDashboard(ctx context.Context, db *sql.DB, filter DashboardFilter, today time.Time) (*DashboardView, error) {
	query := `
		SELECT r.id, r.item_id, r.revision_num, r.name, r.date_prepared,
		       r.expiration_date, r.storage_location_id, r.photo_filename,
		       r.notes, r.amount, r.amount_unit, r.is_deleted, r.created_at,
		       l.name AS location_name, fi.public_id
		FROM item_revisions r
		JOIN (
		    SELECT item_id, MAX(revision_num) AS max_num
		    FROM item_revisions
		    GROUP BY item_id
		) latest ON latest.item_id = r.item_id AND latest.max_num = r.revision_num
		JOIN food_items fi ON fi.id = r.item_id
		JOIN storage_locations l ON l.id = r.storage_location_id`

	var where []string
	var args []any
	if !filter.IncludeDeleted {
		where = append(where, "r.is_deleted = 0")
	}
	if filter.Query != "" {
		where = append(where, "instr(lower(r.name), lower(?)) > 0")
		args = append(args, filter.Query)
	}
	if filter.LocationID != 0 {
		where = append(where, "r.storage_location_id = ?")
		args = append(args, filter.LocationID)
	}
	for i, cond := range where {
		if i == 0 {
			query += "\n\t\tWHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += "\n\t\tORDER BY r.expiration_date IS NULL, r.expiration_date ASC, r.id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing dashboard revisions: %w", err)
	}
	defer rows.Close()

	revisions, err := scanRevisions(rows, true)
	if err != nil {
		return nil, err
	}

	view := &DashboardView{Revisions: revisions}
	view.ByLocation = groupByLocation(revisions)
	view.ExpiringSoon = expiringSoon(revisions, today)

	view.ByDefaultTag, err = groupByDefaultTag(ctx, db, revisions)
	if err != nil {
		return nil, err
	}

	return view, nil
}

// groupByLocation buckets revisions per storage location, preserving the
// overall sort order inside each bucket. Locations with no matches are
// omitted; buckets are ordered by location name.
func groupByLocation(revisions []model.Revision) []LocationGroup {
	index := make(map[int64]int)
	var groups []LocationGroup

	for _, rev := range revisions {
		i, ok := index[rev.StorageLocationID]
		if !ok {
			i = len(groups)
			index[rev.StorageLocationID] = i
			groups = append(groups, LocationGroup{
				LocationID:   rev.StorageLocationID,
				LocationName: rev.LocationName,
			})
		}
		groups[i].Revisions = append(groups[i].Revisions, rev)
	}

	sort.Slice(groups, func(a, b int) bool {
		return groups[a].LocationName < groups[b].LocationName
	})
	return groups
}

// groupByDefaultTag buckets the filtered revisions under each default tag
// carried by their owning item. Each bucket is re-sorted by expiration date
// ascending with nulls last. Tags with no matches are omitted.
func groupByDefaultTag(ctx context.Context, db *sql.DB, revisions []model.Revision) ([]TagGroup, error) {
	if len(revisions) == 0 {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT t.id, t.name, t.is_default, t.created_at, it.item_id
		 FROM tags t
		 JOIN item_tags it ON it.tag_id = t.id
		 WHERE t.is_default = 1
		 ORDER BY t.name, it.item_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing default tag assignments: %w", err)
	}
	defer rows.Close()

	tagged := make(map[int64]map[int64]bool) // tag id -> item ids
	var tags []model.Tag
	for rows.Next() {
		var tag model.Tag
		var itemID int64
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.IsDefault, &tag.CreatedAt, &itemID); err != nil {
			return nil, fmt.Errorf("scanning tag assignment: %w", err)
		}
		if tagged[tag.ID] == nil {
			tagged[tag.ID] = make(map[int64]bool)
			tags = append(tags, tag)
		}
		tagged[tag.ID][itemID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []TagGroup
	for _, tag := range tags {
		var matched []model.Revision
		for _, rev := range revisions {
			if tagged[tag.ID][rev.ItemID] {
				matched = append(matched, rev)
			}
		}
		if len(matched) == 0 {
			continue
		}
		sortByExpiration(matched)
		groups = append(groups, TagGroup{Tag: tag, Revisions: matched})
	}
	return groups, nil
}

// expiringSoon picks revisions expiring within the window. Deleted items
// never appear here, regardless of the listing's IncludeDeleted filter.
func expiringSoon(revisions []model.Revision, today time.Time) []model.Revision {
	var soon []model.Revision
	for _, rev := range revisions {
		if !rev.IsDeleted && rev.ExpiresWithin(today, ExpiringSoonDays) {
			soon = append(soon, rev)
		}
	}
	return soon
}

// sortByExpiration orders revisions by expiration date ascending with nulls
// last, breaking ties by revision id for stability.
func sortByExpiration(revisions []model.Revision) {
	sort.SliceStable(revisions, func(a, b int) bool {
		da, db := revisions[a].ExpirationDate, revisions[b].ExpirationDate
		switch {
		case da == nil && db == nil:
			return revisions[a].ID < revisions[b].ID
		case da == nil:
			return false
		case db == nil:
			return true
		case da.Equal(*db):
			return revisions[a].ID < revisions[b].ID
		default:
			return da.Before(*db)
		}
	})
}
