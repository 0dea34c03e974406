package live

import (
	"time"

	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
)

// RateItemRequest represents a participant rating the airing item
type RateItemRequest struct {
	RoomCode      string    `json:"room_code"`
	ParticipantID string    `json:"participant_id"`
	ItemID        uuid.UUID `json:"item_id"`
	Stars         int       `json:"stars"`
}

// Snapshot is the room and its rating ledger as read under the room lock.
type Snapshot struct {
	Room         models.Room
	Participants []models.Participant
	Picks        []models.Pick
	Ratings      []models.RatingEvent
}

// Rating is an accepted rating. CloseWindow is set when it was the last
// response the airing item was waiting for.
type Rating struct {
	Event       models.RatingEvent
	State       models.RoomItemState
	CloseWindow bool
	Events      []events.Event
}

// AiringStart is the room with its airing marker set.
type AiringStart struct {
	Room   models.Room
	Events []events.Event
}

// Expiry closes an airing window that ran out, filling in timeouts for
// everyone who did not respond.
type Expiry struct {
	ItemID   uuid.UUID
	Timeouts []models.RatingEvent
	At       time.Time
	Events   []events.Event
}
