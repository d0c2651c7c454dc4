package model

import "time"

// Item is a durable food-storage record identified by an opaque public
// token. All of its visible state lives in the revision chain: the item row
// itself never changes after creation.
type Item struct {
	ID        int64     `json:"id"`
	PublicID  string    `json:"public_id"`
	CreatedAt time.Time `json:"created_at"`

	// Revisions is the full chain in revision_num order (ascending).
	Revisions []Revision `json:"revisions,omitempty"`

	// Tags are item-level state, independent of the revision chain.
	Tags []Tag `json:"tags,omitempty"`
}

// LatestRevision returns the revision with the highest revision_num,
// or nil if the item has no revisions.
func (i *Item) LatestRevision() *Revision {
	if len(i.Revisions) == 0 {
		return nil
	}
	return &i.Revisions[len(i.Revisions)-1]
}

// LatestActiveRevision returns the most recent non-deleted revision,
// or nil if every revision is deleted.
func (i *Item) LatestActiveRevision() *Revision {
	for j := len(i.Revisions) - 1; j >= 0; j-- {
		if !i.Revisions[j].IsDeleted {
			return &i.Revisions[j]
		}
	}
	return nil
}

// IsDeleted reports whether the item is logically deleted. Deletion state
// is defined only by the latest revision's flag.
func (i *Item) IsDeleted() bool {
	latest := i.LatestRevision()
	return latest != nil && latest.IsDeleted
}

// HasTag reports whether the item carries the given tag.
func (i *Item) HasTag(tagID int64) bool {
	for _, t := range i.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}
