package model

import "time"

// Item is a physical object in the shared pool. It always has exactly one owner.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	HasPhoto    bool      `json:"has_photo"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined fields (not always populated).
	OwnerName string `json:"owner_name,omitempty"`
}
