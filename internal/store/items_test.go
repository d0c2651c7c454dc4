package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	d := db.NewTestDB(t)
	ctx := context.Background()
	if err := SeedLocations(ctx, d); err != nil {
		t.Fatalf("seeding locations: %v", err)
	}
	if err := SeedTags(ctx, d); err != nil {
		t.Fatalf("seeding tags: %v", err)
	}
	return d
}

func locationID(t *testing.T, d *sql.DB, name string) int64 {
	t.Helper()

	locations, err := ListLocations(context.Background(), d)
	if err != nil {
		t.Fatalf("listing locations: %v", err)
	}
	for _, loc := range locations {
		if loc.Name == name {
			return loc.ID
		}
	}
	t.Fatalf("location %q not found", name)
	return 0
}

func tagID(t *testing.T, d *sql.DB, name string) int64 {
	t.Helper()

	tags, err := ListTags(context.Background(), d)
	if err != nil {
		t.Fatalf("listing tags: %v", err)
	}
	for _, tag := range tags {
		if tag.Name == name {
			return tag.ID
		}
	}
	t.Fatalf("tag %q not found", name)
	return 0
}

func testAttrs(name string, locID int64) model.RevisionAttrs {
	prepared := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	exp := prepared.AddDate(0, 0, 7)
	return model.RevisionAttrs{
		Name:              name,
		DatePrepared:      prepared,
		ExpirationDate:    &exp,
		StorageLocationID: locID,
	}
}

func TestCreateItem(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")
	snacks := tagID(t, d, "Snacks")

	links := []model.Link{{URL: "https://a.test/recipe", Label: "Recipe"}}
	item, err := CreateItem(ctx, d, testAttrs("Lentil soup", pantry), []int64{snacks}, links)
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}

	if len(item.PublicID) != 12 {
		t.Errorf("expected 12-character public id, got %q", item.PublicID)
	}
	if len(item.Revisions) != 1 {
		t.Fatalf("expected 1 revision, got %d", len(item.Revisions))
	}

	rev := item.Revisions[0]
	if rev.RevisionNum != 1 {
		t.Errorf("expected first revision number 1, got %d", rev.RevisionNum)
	}
	if rev.Name != "Lentil soup" || rev.IsDeleted {
		t.Errorf("unexpected first revision: %+v", rev)
	}
	if rev.LocationName != "Pantry" {
		t.Errorf("expected location name joined, got %q", rev.LocationName)
	}
	if len(rev.Links) != 1 || rev.Links[0].URL != "https://a.test/recipe" || rev.Links[0].Label != "Recipe" {
		t.Errorf("unexpected links: %+v", rev.Links)
	}
	if len(item.Tags) != 1 || item.Tags[0].Name != "Snacks" {
		t.Errorf("unexpected tags: %+v", item.Tags)
	}
}

func TestCreateItemUnknownLocation(t *testing.T) {
	d := setupDB(t)

	_, err := CreateItem(context.Background(), d, testAttrs("Soup", 9999), nil, nil)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown location, got %v", err)
	}
}

func TestAppendRevisionNumbering(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")

	item, err := CreateItem(ctx, d, testAttrs("Soup", pantry), nil, nil)
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := AppendRevision(ctx, d, item.ID, testAttrs("Soup", pantry), nil); err != nil {
			t.Fatalf("appending revision: %v", err)
		}
	}

	item, err = GetItemByPublicID(ctx, d, item.PublicID)
	if err != nil {
		t.Fatalf("reloading item: %v", err)
	}
	if len(item.Revisions) != 4 {
		t.Fatalf("expected 4 revisions, got %d", len(item.Revisions))
	}
	for i, rev := range item.Revisions {
		if rev.RevisionNum != i+1 {
			t.Errorf("expected contiguous numbering, revision[%d] has num %d", i, rev.RevisionNum)
		}
	}
}

func TestAppendDoesNotChangeEarlierRevisions(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")
	fridge := locationID(t, d, "Fridge")

	item, err := CreateItem(ctx, d, testAttrs("Original", pantry),
		nil, []model.Link{{URL: "https://a.test/first"}})
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}
	first := item.Revisions[0]

	changed := testAttrs("Renamed", fridge)
	changed.Notes = "moved"
	if _, err := AppendRevision(ctx, d, item.ID, changed, nil); err != nil {
		t.Fatalf("appending revision: %v", err)
	}

	item, err = GetItemByPublicID(ctx, d, item.PublicID)
	if err != nil {
		t.Fatalf("reloading item: %v", err)
	}

	got := item.Revisions[0]
	if got.Name != first.Name || got.StorageLocationID != first.StorageLocationID ||
		!got.DatePrepared.Equal(first.DatePrepared) {
		t.Errorf("revision 1 changed after append: before %+v, after %+v", first, got)
	}
	if len(got.Links) != 1 || got.Links[0].URL != "https://a.test/first" {
		t.Errorf("revision 1 links changed after append: %+v", got.Links)
	}
}

func TestAppendRevisionUnknownLocation(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")

	item, err := CreateItem(ctx, d, testAttrs("Soup", pantry), nil, nil)
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}

	_, err = AppendRevision(ctx, d, item.ID, testAttrs("Soup", 9999), nil)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown location, got %v", err)
	}
}

// A delete followed by a restore adds exactly two revisions and leaves the
// item displaying the same fields and links it had before the delete.
func TestDeleteThenRestore(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")

	amount := 1.5
	attrs := testAttrs("Chili", pantry)
	attrs.Notes = "spicy"
	attrs.Amount = &amount
	attrs.AmountUnit = "l"
	links := []model.Link{{URL: "https://a.test/recipe", Label: "Recipe"}}

	item, err := CreateItem(ctx, d, attrs, nil, links)
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}
	before := *item.LatestRevision()

	// Soft delete: deleted flag set, no links carried.
	delRev, err := AppendRevision(ctx, d, item.ID, model.DeleteAttrs(&before), nil)
	if err != nil {
		t.Fatalf("deleting item: %v", err)
	}
	if !delRev.IsDeleted {
		t.Error("delete revision must have the deleted flag set")
	}

	item, err = GetItemByPublicID(ctx, d, item.PublicID)
	if err != nil {
		t.Fatalf("reloading item: %v", err)
	}
	if !item.IsDeleted() {
		t.Error("item must be deleted after the delete revision")
	}
	if got := item.LatestRevision().Links; len(got) != 0 {
		t.Errorf("delete revision must carry no links, got %+v", got)
	}

	// Restore copies attrs and links from the pre-delete revision.
	source := model.RestoreSource(item)
	if source.RevisionNum != before.RevisionNum {
		t.Fatalf("expected restore source %d, got %d", before.RevisionNum, source.RevisionNum)
	}
	if _, err := AppendRevision(ctx, d, item.ID, model.RestoreAttrs(source), source.Links); err != nil {
		t.Fatalf("restoring item: %v", err)
	}

	item, err = GetItemByPublicID(ctx, d, item.PublicID)
	if err != nil {
		t.Fatalf("reloading item: %v", err)
	}
	if len(item.Revisions) != 3 {
		t.Fatalf("expected 3 revisions after delete and restore, got %d", len(item.Revisions))
	}
	if item.IsDeleted() {
		t.Error("item must be active after restore")
	}

	final := item.LatestRevision()
	if final.Name != before.Name || final.Notes != before.Notes ||
		*final.Amount != *before.Amount || final.AmountUnit != before.AmountUnit ||
		!final.DatePrepared.Equal(before.DatePrepared) {
		t.Errorf("restored fields differ from pre-delete: before %+v, after %+v", before, final)
	}
	if len(final.Links) != 1 || final.Links[0].URL != "https://a.test/recipe" || final.Links[0].Label != "Recipe" {
		t.Errorf("restored links differ from pre-delete: %+v", final.Links)
	}
}

func TestQuickAmountCarriesEverythingElse(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")

	attrs := testAttrs("Stew", pantry)
	attrs.Notes = "family recipe"
	links := []model.Link{{URL: "https://a.test/stew"}}

	item, err := CreateItem(ctx, d, attrs, nil, links)
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}
	prev := item.LatestRevision()

	amount := 0.5
	if _, err := AppendRevision(ctx, d, item.ID,
		model.QuickAmountAttrs(prev, &amount, "kg"), prev.Links); err != nil {
		t.Fatalf("appending quick amount revision: %v", err)
	}

	item, err = GetItemByPublicID(ctx, d, item.PublicID)
	if err != nil {
		t.Fatalf("reloading item: %v", err)
	}
	latest := item.LatestRevision()
	if *latest.Amount != 0.5 || latest.AmountUnit != "kg" {
		t.Errorf("expected updated amount, got %v %q", latest.Amount, latest.AmountUnit)
	}
	if latest.Name != prev.Name || latest.Notes != prev.Notes {
		t.Errorf("expected other fields carried, got %+v", latest)
	}
	if len(latest.Links) != 1 || latest.Links[0].URL != "https://a.test/stew" {
		t.Errorf("expected links carried, got %+v", latest.Links)
	}
}

func TestGetItemByPublicIDNotFound(t *testing.T) {
	d := setupDB(t)

	_, err := GetItemByPublicID(context.Background(), d, "nosuchitemid")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")

	item, err := CreateItem(ctx, d, testAttrs("Soup", pantry), nil, nil)
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}
	if _, err := AppendRevision(ctx, d, item.ID, testAttrs("Soup v2", pantry), nil); err != nil {
		t.Fatalf("appending revision: %v", err)
	}

	history, err := History(ctx, d, item.ID)
	if err != nil {
		t.Fatalf("listing history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].RevisionNum != 2 || history[1].RevisionNum != 1 {
		t.Errorf("expected newest first, got %d then %d",
			history[0].RevisionNum, history[1].RevisionNum)
	}
	if history[0].Name != "Soup v2" {
		t.Errorf("expected latest name first, got %q", history[0].Name)
	}
}
