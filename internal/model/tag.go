package model

import "time"

// Tag is a named label for items. Default tags always get their own
// dashboard section, even with zero manual curation.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}
