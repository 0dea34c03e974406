package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is a catalog entry (a commercial). Items are global, never room-scoped.
type Item struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	ImageURL   string          `json:"image_url"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
