package models

import "time"

// Character is a roster entity that a gallery attaches to. The surrounding
// application owns everything about a character except its gallery
// attribute.
type Character struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
