package view

import (
	"time"

	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/scoreboard"
)

// TurnView is the draft clock as seen by any observer.
type TurnView struct {
	RoomCode         string            `json:"room_code"`
	Status           models.RoomStatus `json:"status"`
	ParticipantID    string            `json:"participant_id,omitempty"`
	TurnIndex        int               `json:"turn_index"`
	Round            int               `json:"round"`
	RemainingSeconds int               `json:"remaining_seconds"`
	Deadline         *time.Time        `json:"deadline,omitempty"`
	DraftComplete    bool              `json:"draft_complete"`
	TotalPicks       int               `json:"total_picks"`
	Skips            int               `json:"skips"`
	Order            []string          `json:"order"`
}

// AiringView is the rating window of the airing item.
type AiringView struct {
	ItemID           uuid.UUID `json:"item_id"`
	StartedAt        time.Time `json:"started_at"`
	Deadline         time.Time `json:"deadline"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Expired          bool      `json:"expired"`
}

// RoomState is everything a connected client renders.
type RoomState struct {
	Room         models.Room            `json:"room"`
	Participants []models.Participant   `json:"participants"`
	Turn         TurnView               `json:"turn"`
	Airing       *AiringView            `json:"airing,omitempty"`
	Picks        []models.Pick          `json:"picks"`
	ItemStates   []models.RoomItemState `json:"item_states"`
	Leaderboard  []scoreboard.Standing  `json:"leaderboard"`
	Lineup       *scoreboard.Lineup     `json:"lineup,omitempty"`
	ServerTime   time.Time              `json:"server_time"`
}

// ActiveRoom carries the absolute timestamps a background poller needs to
// decide whether a turn or an airing window has run out.
type ActiveRoom struct {
	Code            string            `json:"code"`
	Status          models.RoomStatus `json:"status"`
	TurnIndex       int               `json:"turn_index"`
	ParticipantID   string            `json:"participant_id,omitempty"`
	TurnAnchor      *time.Time        `json:"turn_anchor,omitempty"`
	TurnDurationSec int               `json:"turn_duration_sec"`
	AiringItemID    *uuid.UUID        `json:"airing_item_id,omitempty"`
	AiringStartedAt *time.Time        `json:"airing_started_at,omitempty"`
	AiringWindowSec int               `json:"airing_window_sec"`
}
