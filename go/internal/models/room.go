package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus defines the lifecycle phase of a room.
type RoomStatus string

const (
	RoomStatusLobby     RoomStatus = "LOBBY"
	RoomStatusDrafting  RoomStatus = "DRAFTING"
	RoomStatusCompleted RoomStatus = "COMPLETED"
)

// DefaultPickQuota is the number of picks each participant drafts unless the
// host chooses a different quota when creating the room.
const DefaultPickQuota = 5

// RoomSettings holds JSONB configuration for rooms. Validated at creation only.
type RoomSettings struct {
	TurnDurationSec int  `json:"turn_duration_sec"`
	MaxParticipants int  `json:"max_participants"`
	SnakeDraft      bool `json:"snake_draft"`
	PickQuota       int  `json:"pick_quota"`
}

// TurnDuration returns the per-turn time limit.
func (s RoomSettings) TurnDuration() time.Duration {
	return time.Duration(s.TurnDurationSec) * time.Second
}

// Room is an isolated game session identified by a short code.
type Room struct {
	Code            string       `json:"code"`
	HostID          string       `json:"host_id"`
	Status          RoomStatus   `json:"status"`
	Settings        RoomSettings `json:"settings"`
	DraftStartedAt  *time.Time   `json:"draft_started_at,omitempty"`
	TurnAnchor      *time.Time   `json:"turn_anchor,omitempty"`
	SkipCount       int          `json:"skip_count"`
	AiringItemID    *uuid.UUID   `json:"airing_item_id,omitempty"`
	AiringStartedAt *time.Time   `json:"airing_started_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsAiring reports whether itemID is the room's currently airing item.
func (r Room) IsAiring(itemID uuid.UUID) bool {
	return r.AiringItemID != nil && *r.AiringItemID == itemID
}
