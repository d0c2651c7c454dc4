package model

import "time"

// Revision is an immutable snapshot of an item's displayable state.
// Rows are only ever inserted, never updated: every mutation flow appends
// a new revision with the next revision_num.
type Revision struct {
	ID                int64      `json:"id"`
	ItemID            int64      `json:"item_id"`
	RevisionNum       int        `json:"revision_num"`
	Name              string     `json:"name"`
	DatePrepared      time.Time  `json:"date_prepared"`
	ExpirationDate    *time.Time `json:"expiration_date,omitempty"`
	StorageLocationID int64      `json:"storage_location_id"`
	PhotoFilename     string     `json:"photo_filename,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Amount            *float64   `json:"amount,omitempty"`
	AmountUnit        string     `json:"amount_unit,omitempty"`
	IsDeleted         bool       `json:"is_deleted"`
	CreatedAt         time.Time  `json:"created_at"`

	Links []Link `json:"links,omitempty"`

	// Joined fields (not always populated).
	LocationName string `json:"location_name,omitempty"`
	ItemPublicID string `json:"item_public_id,omitempty"`
}

// Link is a hyperlink attached to one revision.
type Link struct {
	ID         int64  `json:"id"`
	RevisionID int64  `json:"revision_id"`
	URL        string `json:"url"`
	Label      string `json:"label,omitempty"`
}

// ExpiresWithin reports whether the revision has an expiration date inside
// [today, today+days].
func (r *Revision) ExpiresWithin(today time.Time, days int) bool {
	if r.ExpirationDate == nil {
		return false
	}
	d := *r.ExpirationDate
	return !d.Before(today) && !d.After(today.AddDate(0, 0, days))
}

// RevisionAttrs holds the writable fields of a revision. Each mutation flow
// builds one via its carry-forward policy and hands it to AppendRevision.
type RevisionAttrs struct {
	Name              string
	DatePrepared      time.Time
	ExpirationDate    *time.Time
	StorageLocationID int64
	PhotoFilename     string
	Notes             string
	Amount            *float64
	AmountUnit        string
	IsDeleted         bool
}

// attrsOf snapshots a revision's writable fields.
func attrsOf(rev *Revision) RevisionAttrs {
	return RevisionAttrs{
		Name:              rev.Name,
		DatePrepared:      rev.DatePrepared,
		ExpirationDate:    rev.ExpirationDate,
		StorageLocationID: rev.StorageLocationID,
		PhotoFilename:     rev.PhotoFilename,
		Notes:             rev.Notes,
		Amount:            rev.Amount,
		AmountUnit:        rev.AmountUnit,
		IsDeleted:         rev.IsDeleted,
	}
}

// EditAttrs builds the attrs for an edit: everything comes from the form,
// except the photo is carried from prev when keepPhoto is set and no new
// photo was uploaded. The result is always non-deleted.
func EditAttrs(prev *Revision, form RevisionAttrs, keepPhoto bool) RevisionAttrs {
	if form.PhotoFilename == "" && keepPhoto && prev != nil {
		form.PhotoFilename = prev.PhotoFilename
	}
	form.IsDeleted = false
	return form
}

// QuickAmountAttrs builds the attrs for a quick amount update: only amount
// and unit come from the form, everything else (including the deleted flag)
// is carried from prev. Callers also carry prev's links.
func QuickAmountAttrs(prev *Revision, amount *float64, unit string) RevisionAttrs {
	attrs := attrsOf(prev)
	attrs.Amount = amount
	attrs.AmountUnit = unit
	return attrs
}

// DeleteAttrs builds the attrs for a soft delete: everything from prev with
// the deleted flag set. The delete revision carries no links; a later
// restore re-copies them from the pre-delete source.
func DeleteAttrs(prev *Revision) RevisionAttrs {
	attrs := attrsOf(prev)
	attrs.IsDeleted = true
	return attrs
}

// RestoreAttrs builds the attrs for a restore from the source revision
// (latest active, falling back to latest). Links are copied from the same
// source by the caller.
func RestoreAttrs(source *Revision) RevisionAttrs {
	attrs := attrsOf(source)
	attrs.IsDeleted = false
	return attrs
}

// ReuseAttrs builds the attrs for reusing a label after a delete: fresh form
// values only, nothing carried forward.
func ReuseAttrs(form RevisionAttrs) RevisionAttrs {
	form.IsDeleted = false
	return form
}

// RestoreSource picks the revision a restore copies from: the latest active
// revision, or the latest revision if none is active.
func RestoreSource(item *Item) *Revision {
	if src := item.LatestActiveRevision(); src != nil {
		return src
	}
	return item.LatestRevision()
}
