package model

import "time"

// StorageLocation is a named place where food is kept.
type StorageLocation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Default locations seeded at startup.
var DefaultLocations = []string{"Pantry", "Fridge", "Freezer"}

// Default tags seeded at startup; these get a dedicated dashboard section.
var DefaultTags = []string{"Prepared Meals", "Snacks"}
