// Package events defines the room change notifications written to the outbox
// and fanned out over JetStream. Payloads are shared by producers and the
// gateway.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	RoomCreated       EventType = "RoomCreated"
	ParticipantJoined EventType = "ParticipantJoined"
	ParticipantReady  EventType = "ParticipantReady"
	DraftStarted      EventType = "DraftStarted"
	PickMade          EventType = "PickMade"
	TurnSkipped       EventType = "TurnSkipped"
	DraftCompleted    EventType = "DraftCompleted"
	AiringStarted     EventType = "AiringStarted"
	RatingRecorded    EventType = "RatingRecorded"
	AiringClosed      EventType = "AiringClosed"
	RoomReset         EventType = "RoomReset"
	RoomClosed        EventType = "RoomClosed"
)

// SubjectPrefix is the JetStream subject namespace; the event type is appended.
const SubjectPrefix = "room.events."

// Subject returns the JetStream subject for t.
func Subject(t EventType) string {
	return SubjectPrefix + string(t)
}

// Event is a change notification bound for the outbox.
type Event struct {
	RoomCode string
	Type     EventType
	Payload  any
}

// New builds an Event.
func New(roomCode string, t EventType, payload any) Event {
	return Event{RoomCode: roomCode, Type: t, Payload: payload}
}

// Marshal encodes the payload.
func (e Event) Marshal() ([]byte, error) {
	b, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", e.Type, err)
	}
	return b, nil
}

// RoomPayload is the payload for RoomCreated, RoomReset and RoomClosed.
type RoomPayload struct {
	RoomCode string    `json:"room_code"`
	HostID   string    `json:"host_id"`
	At       time.Time `json:"at"`
}

// ParticipantPayload is the payload for ParticipantJoined and ParticipantReady.
type ParticipantPayload struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Icon          string `json:"icon"`
	Ready         bool   `json:"ready"`
}

// DraftStartedPayload is the payload for a DraftStarted event
type DraftStartedPayload struct {
	RoomCode        string    `json:"room_code"`
	Order           []string  `json:"order"`
	StartedAt       time.Time `json:"started_at"`
	TurnDurationSec int       `json:"turn_duration_sec"`
	PickQuota       int       `json:"pick_quota"`
	SnakeDraft      bool      `json:"snake_draft"`
}

// PickMadePayload is the payload for a PickMade event
type PickMadePayload struct {
	RoomCode          string    `json:"room_code"`
	PickID            string    `json:"pick_id"`
	ParticipantID     string    `json:"participant_id"`
	ItemID            string    `json:"item_id"`
	ItemName          string    `json:"item_name"`
	Sequence          int       `json:"sequence"`
	Round             int       `json:"round"`
	MadeAt            time.Time `json:"made_at"`
	NextParticipantID string    `json:"next_participant_id,omitempty"`
}

// TurnSkippedPayload is the payload for a TurnSkipped event
type TurnSkippedPayload struct {
	RoomCode          string    `json:"room_code"`
	ParticipantID     string    `json:"participant_id"`
	TurnIndex         int       `json:"turn_index"`
	SkippedAt         time.Time `json:"skipped_at"`
	NextParticipantID string    `json:"next_participant_id,omitempty"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event
type DraftCompletedPayload struct {
	RoomCode    string    `json:"room_code"`
	CompletedAt time.Time `json:"completed_at"`
	TotalPicks  int       `json:"total_picks"`
	Skips       int       `json:"skips"`
}

// AiringStartedPayload is the payload for an AiringStarted event
type AiringStartedPayload struct {
	RoomCode  string    `json:"room_code"`
	ItemID    string    `json:"item_id"`
	StartedAt time.Time `json:"started_at"`
	WindowSec int       `json:"window_sec"`
}

// RatingRecordedPayload is the payload for a RatingRecorded event
type RatingRecordedPayload struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id"`
	ItemID        string `json:"item_id"`
	Stars         int    `json:"stars"`
}

// Reasons an airing window closes.
const (
	ClosedAllRated = "all_rated"
	ClosedExpired  = "expired"
)

// AiringClosedPayload is the payload for an AiringClosed event
type AiringClosedPayload struct {
	RoomCode       string    `json:"room_code"`
	ItemID         string    `json:"item_id"`
	ClosedAt       time.Time `json:"closed_at"`
	Reason         string    `json:"reason"`
	TimeoutRatings int       `json:"timeout_ratings"`
}

// ParsePayload decodes data into the payload struct registered for t.
func ParsePayload(t EventType, data []byte) (any, error) {
	var payload any
	switch t {
	case RoomCreated, RoomReset, RoomClosed:
		payload = &RoomPayload{}
	case ParticipantJoined, ParticipantReady:
		payload = &ParticipantPayload{}
	case DraftStarted:
		payload = &DraftStartedPayload{}
	case PickMade:
		payload = &PickMadePayload{}
	case TurnSkipped:
		payload = &TurnSkippedPayload{}
	case DraftCompleted:
		payload = &DraftCompletedPayload{}
	case AiringStarted:
		payload = &AiringStartedPayload{}
	case RatingRecorded:
		payload = &RatingRecordedPayload{}
	case AiringClosed:
		payload = &AiringClosedPayload{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", t)
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", t, err)
	}
	return payload, nil
}
