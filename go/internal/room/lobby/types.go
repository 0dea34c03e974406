package lobby

import (
	"time"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
)

// CreateRoomRequest represents a request to open a new room
type CreateRoomRequest struct {
	HostID          string `json:"host_id"`
	TurnDurationSec int    `json:"turn_duration_sec"`
	MaxParticipants int    `json:"max_participants"`
	SnakeDraft      bool   `json:"snake_draft"`
	PickQuota       int    `json:"pick_quota"` // zero selects the configured default
}

// JoinRoomRequest represents a participant entering a room's lobby
type JoinRoomRequest struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id"` // empty for a new guest
	DisplayName   string `json:"display_name"`
	Icon          string `json:"icon"`
}

// SetReadyRequest represents a participant toggling their ready flag
type SetReadyRequest struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id"`
	Ready         bool   `json:"ready"`
}

// Join is what the repository persists when a join is accepted.
type Join struct {
	Participant models.Participant
	Events      []events.Event
}

// DraftStart is what the repository persists when the host starts the draft.
type DraftStart struct {
	Order  []string // participant ids, index = turn order
	At     time.Time
	Events []events.Event
}

// RecordKind names the per-room rows deleted one by one when a room closes.
type RecordKind string

const (
	RecordRatings      RecordKind = "rating_events"
	RecordPicks        RecordKind = "picks"
	RecordParticipants RecordKind = "participants"
	RecordOutbox       RecordKind = "room_outbox"
)

// closeOrder deletes dependents before the rows they describe.
var closeOrder = []RecordKind{RecordRatings, RecordPicks, RecordParticipants, RecordOutbox}
