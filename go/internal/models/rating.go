package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinStars = 1
	MaxStars = 5
	// TimeoutStars marks a rating submitted on a participant's behalf when the
	// airing window ran out.
	TimeoutStars = 0
)

// RatingEvent is one participant's rating of one item in one room.
type RatingEvent struct {
	ID            uuid.UUID `json:"id"`
	RoomCode      string    `json:"room_code"`
	ParticipantID string    `json:"participant_id"`
	ItemID        uuid.UUID `json:"item_id"`
	Stars         int       `json:"stars"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsTimeout reports whether the event was auto-submitted at window expiry.
func (e RatingEvent) IsTimeout() bool {
	return e.Stars == TimeoutStars
}

// RoomItemState is derived per read from the room and its rating events.
type RoomItemState struct {
	ItemID        uuid.UUID `json:"item_id"`
	IsAiring      bool      `json:"is_airing"`
	Aired         bool      `json:"aired"`
	MeanRating    float64   `json:"mean_rating"`
	RatingCount   int       `json:"rating_count"`
	ResponseCount int       `json:"response_count"`
	Points        int       `json:"points"`
}
