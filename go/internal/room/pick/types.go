package pick

import (
	"time"

	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/turn"
)

// MakePickRequest represents a participant drafting an item
type MakePickRequest struct {
	RoomCode      string    `json:"room_code"`
	ParticipantID string    `json:"participant_id"`
	ItemID        uuid.UUID `json:"item_id"`
	// ExpectedTurn, when set, must equal the current turn index.
	ExpectedTurn *int `json:"expected_turn,omitempty"`
}

// Snapshot is the room as read under its row lock.
type Snapshot struct {
	Room         models.Room
	Participants []models.Participant
	Picks        []models.Pick
}

func (s Snapshot) State() turn.State {
	return turn.NewState(s.Participants, s.Picks, s.Room.Settings, s.Room.SkipCount)
}

// Claim is an accepted pick and the room changes that come with it.
type Claim struct {
	Pick     models.Pick
	Complete bool
	At       time.Time
	Events   []events.Event
}

// Skip is an accepted turn timeout.
type Skip struct {
	ParticipantID string
	TurnIndex     int
	At            time.Time
	Events        []events.Event
}
