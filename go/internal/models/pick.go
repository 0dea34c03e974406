package models

import (
	"time"

	"github.com/google/uuid"
)

// Pick records one item drafted by a participant in a room.
type Pick struct {
	ID            uuid.UUID `json:"id"`
	RoomCode      string    `json:"room_code"`
	ParticipantID string    `json:"participant_id"`
	ItemID        uuid.UUID `json:"item_id"`
	ItemName      string    `json:"item_name"`
	Category      string    `json:"category"`
	Sequence      int       `json:"sequence"` // 1-based within the room
	Round         int       `json:"round"`
	PickedAt      time.Time `json:"picked_at"`
}

// RoundFor derives the round of a 1-based pick sequence: ceil(sequence / n).
func RoundFor(sequence, participants int) int {
	if participants <= 0 || sequence <= 0 {
		return 0
	}
	return (sequence + participants - 1) / participants
}
