package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/shramba/internal/model"
)

var dashboardToday = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

// dashboardAttrs builds attrs expiring the given number of days from
// dashboardToday. A negative offset means no expiration date.
func dashboardAttrs(name string, locID int64, expOffset int) model.RevisionAttrs {
	attrs := model.RevisionAttrs{
		Name:              name,
		DatePrepared:      dashboardToday.AddDate(0, 0, -2),
		StorageLocationID: locID,
	}
	if expOffset >= 0 {
		exp := dashboardToday.AddDate(0, 0, expOffset)
		attrs.ExpirationDate = &exp
	}
	return attrs
}

func createDashboardItem(t *testing.T, d *sql.DB, attrs model.RevisionAttrs, tagIDs []int64) *model.Item {
	t.Helper()

	item, err := CreateItem(context.Background(), d, attrs, tagIDs, nil)
	if err != nil {
		t.Fatalf("creating item %q: %v", attrs.Name, err)
	}
	return item
}

func listDashboard(t *testing.T, d *sql.DB, filter DashboardFilter) *DashboardView {
	t.Helper()

	view, err := ListDashboard(context.Background(), d, filter, dashboardToday)
	if err != nil {
		t.Fatalf("listing dashboard: %v", err)
	}
	return view
}

func names(revisions []model.Revision) []string {
	var out []string
	for _, rev := range revisions {
		out = append(out, rev.Name)
	}
	return out
}

func TestDashboardShowsOnlyLatestRevision(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")

	item := createDashboardItem(t, d, dashboardAttrs("Old name", pantry, 5), nil)
	if _, err := AppendRevision(ctx, d, item.ID, dashboardAttrs("New name", pantry, 5), nil); err != nil {
		t.Fatalf("appending revision: %v", err)
	}

	view := listDashboard(t, d, DashboardFilter{})
	if len(view.Revisions) != 1 {
		t.Fatalf("expected 1 dashboard row, got %d: %v", len(view.Revisions), names(view.Revisions))
	}
	if view.Revisions[0].Name != "New name" {
		t.Errorf("expected latest revision shown, got %q", view.Revisions[0].Name)
	}
	if view.Revisions[0].ItemPublicID != item.PublicID {
		t.Errorf("expected public id joined, got %q", view.Revisions[0].ItemPublicID)
	}
}

func TestDashboardOrdering(t *testing.T) {
	d := setupDB(t)
	pantry := locationID(t, d, "Pantry")

	createDashboardItem(t, d, dashboardAttrs("No expiration", pantry, -1), nil)
	createDashboardItem(t, d, dashboardAttrs("Later", pantry, 10), nil)
	createDashboardItem(t, d, dashboardAttrs("Sooner", pantry, 2), nil)

	view := listDashboard(t, d, DashboardFilter{})
	got := names(view.Revisions)
	want := []string{"Sooner", "Later", "No expiration"}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestDashboardDeletedFilter(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")

	active := createDashboardItem(t, d, dashboardAttrs("Active", pantry, 5), nil)
	deleted := createDashboardItem(t, d, dashboardAttrs("Deleted", pantry, 5), nil)
	if _, err := AppendRevision(ctx, d, deleted.ID,
		model.DeleteAttrs(deleted.LatestRevision()), nil); err != nil {
		t.Fatalf("deleting item: %v", err)
	}

	view := listDashboard(t, d, DashboardFilter{})
	if len(view.Revisions) != 1 || view.Revisions[0].ItemID != active.ID {
		t.Errorf("expected only the active item, got %v", names(view.Revisions))
	}

	view = listDashboard(t, d, DashboardFilter{IncludeDeleted: true})
	if len(view.Revisions) != 2 {
		t.Errorf("expected both items with IncludeDeleted, got %v", names(view.Revisions))
	}
}

func TestDashboardQueryFilter(t *testing.T) {
	d := setupDB(t)
	pantry := locationID(t, d, "Pantry")

	createDashboardItem(t, d, dashboardAttrs("Lentil Soup", pantry, 5), nil)
	createDashboardItem(t, d, dashboardAttrs("Chili", pantry, 5), nil)

	view := listDashboard(t, d, DashboardFilter{Query: "soup"})
	if len(view.Revisions) != 1 || view.Revisions[0].Name != "Lentil Soup" {
		t.Errorf("expected case-insensitive substring match, got %v", names(view.Revisions))
	}

	view = listDashboard(t, d, DashboardFilter{Query: "pizza"})
	if len(view.Revisions) != 0 {
		t.Errorf("expected no matches, got %v", names(view.Revisions))
	}
}

func TestDashboardLocationFilter(t *testing.T) {
	d := setupDB(t)
	pantry := locationID(t, d, "Pantry")
	fridge := locationID(t, d, "Fridge")

	createDashboardItem(t, d, dashboardAttrs("In pantry", pantry, 5), nil)
	createDashboardItem(t, d, dashboardAttrs("In fridge", fridge, 5), nil)

	view := listDashboard(t, d, DashboardFilter{LocationID: fridge})
	if len(view.Revisions) != 1 || view.Revisions[0].Name != "In fridge" {
		t.Errorf("expected only the fridge item, got %v", names(view.Revisions))
	}
}

func TestDashboardByLocationGroups(t *testing.T) {
	d := setupDB(t)
	pantry := locationID(t, d, "Pantry")
	fridge := locationID(t, d, "Fridge")

	createDashboardItem(t, d, dashboardAttrs("Bread", pantry, 5), nil)
	createDashboardItem(t, d, dashboardAttrs("Rice", pantry, 8), nil)
	createDashboardItem(t, d, dashboardAttrs("Milk", fridge, 2), nil)

	view := listDashboard(t, d, DashboardFilter{})
	if len(view.ByLocation) != 2 {
		t.Fatalf("expected 2 location groups, got %d", len(view.ByLocation))
	}

	// Groups are ordered by location name; the empty freezer is omitted.
	if view.ByLocation[0].LocationName != "Fridge" || view.ByLocation[1].LocationName != "Pantry" {
		t.Errorf("unexpected group order: %q, %q",
			view.ByLocation[0].LocationName, view.ByLocation[1].LocationName)
	}
	if got := names(view.ByLocation[1].Revisions); len(got) != 2 || got[0] != "Bread" {
		t.Errorf("unexpected pantry group: %v", got)
	}
}

func TestDashboardDefaultTagGroups(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")
	snacks := tagID(t, d, "Snacks")

	custom, err := CreateTag(ctx, d, "Homemade", false)
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	createDashboardItem(t, d, dashboardAttrs("Crackers", pantry, 8), []int64{snacks})
	createDashboardItem(t, d, dashboardAttrs("Nuts", pantry, 2), []int64{snacks})
	createDashboardItem(t, d, dashboardAttrs("Jam", pantry, 5), []int64{custom.ID})

	view := listDashboard(t, d, DashboardFilter{})

	// Only default tags produce buckets, and only non-empty ones appear.
	if len(view.ByDefaultTag) != 1 {
		t.Fatalf("expected 1 default tag group, got %d", len(view.ByDefaultTag))
	}
	group := view.ByDefaultTag[0]
	if group.Tag.Name != "Snacks" {
		t.Errorf("expected Snacks group, got %q", group.Tag.Name)
	}

	// Bucket members keep expiration order.
	if got := names(group.Revisions); len(got) != 2 || got[0] != "Nuts" || got[1] != "Crackers" {
		t.Errorf("unexpected Snacks group order: %v", got)
	}
}

func TestDashboardExpiringSoon(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	pantry := locationID(t, d, "Pantry")

	createDashboardItem(t, d, dashboardAttrs("Expires today", pantry, 0), nil)
	createDashboardItem(t, d, dashboardAttrs("Edge of window", pantry, ExpiringSoonDays), nil)
	createDashboardItem(t, d, dashboardAttrs("Past window", pantry, ExpiringSoonDays+1), nil)
	createDashboardItem(t, d, dashboardAttrs("No expiration", pantry, -1), nil)

	deleted := createDashboardItem(t, d, dashboardAttrs("Deleted soon", pantry, 1), nil)
	if _, err := AppendRevision(ctx, d, deleted.ID,
		model.DeleteAttrs(deleted.LatestRevision()), nil); err != nil {
		t.Fatalf("deleting item: %v", err)
	}

	// Deleted items never appear in expiring soon, even when the listing
	// itself includes them.
	view := listDashboard(t, d, DashboardFilter{IncludeDeleted: true})
	got := names(view.ExpiringSoon)
	want := []string{"Expires today", "Edge of window"}
	if len(got) != len(want) {
		t.Fatalf("expected %v expiring soon, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expiring soon row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
