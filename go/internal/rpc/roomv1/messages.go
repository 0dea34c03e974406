package roomv1

import (
	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/scoreboard"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/view"
)

// RoomService

type CreateRoomRequest struct {
	HostID          string `json:"host_id"`
	TurnDurationSec int    `json:"turn_duration_sec"`
	MaxParticipants int    `json:"max_participants"`
	SnakeDraft      bool   `json:"snake_draft"`
	PickQuota       int    `json:"pick_quota,omitempty"`
}

type CreateRoomResponse struct {
	Room models.Room `json:"room"`
}

type JoinRoomRequest struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id,omitempty"`
	DisplayName   string `json:"display_name"`
	Icon          string `json:"icon"`
}

type JoinRoomResponse struct {
	Participant models.Participant `json:"participant"`
}

type SetReadyRequest struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id"`
	Ready         bool   `json:"ready"`
}

type SetReadyResponse struct{}

type StartDraftRequest struct {
	RoomCode string `json:"room_code"`
	HostID   string `json:"host_id"`
}

type StartDraftResponse struct {
	Order []string `json:"order"`
}

type ResetRoomRequest struct {
	RoomCode string `json:"room_code"`
	HostID   string `json:"host_id"`
}

type ResetRoomResponse struct{}

type CloseRoomRequest struct {
	RoomCode string `json:"room_code"`
	HostID   string `json:"host_id"`
}

type CloseRoomResponse struct{}

type GetRoomStateRequest struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id,omitempty"`
}

type GetRoomStateResponse struct {
	State view.RoomState `json:"state"`
}

type ListActiveRoomsRequest struct{}

type ListActiveRoomsResponse struct {
	Rooms []view.ActiveRoom `json:"rooms"`
}

// DraftService

type MakePickRequest struct {
	RoomCode      string    `json:"room_code"`
	ParticipantID string    `json:"participant_id"`
	ItemID        uuid.UUID `json:"item_id"`
	ExpectedTurn  *int      `json:"expected_turn,omitempty"`
}

type MakePickResponse struct {
	Pick          models.Pick `json:"pick"`
	DraftComplete bool        `json:"draft_complete"`
}

type SkipTurnRequest struct {
	RoomCode     string `json:"room_code"`
	ExpectedTurn int    `json:"expected_turn"`
}

type SkipTurnResponse struct {
	Skipped       bool   `json:"skipped"`
	ParticipantID string `json:"participant_id,omitempty"`
	DraftComplete bool   `json:"draft_complete"`
}

type GetTurnRequest struct {
	RoomCode string `json:"room_code"`
}

type GetTurnResponse struct {
	Turn view.TurnView `json:"turn"`
}

type ListPicksRequest struct {
	RoomCode string `json:"room_code"`
}

type ListPicksResponse struct {
	Picks []models.Pick `json:"picks"`
}

type ListAvailableItemsRequest struct {
	RoomCode string `json:"room_code"`
}

type ListAvailableItemsResponse struct {
	Items []models.Item `json:"items"`
}

// LiveService

type StartAiringRequest struct {
	RoomCode string    `json:"room_code"`
	HostID   string    `json:"host_id"`
	ItemID   uuid.UUID `json:"item_id"`
}

type StartAiringResponse struct {
	Airing view.AiringView `json:"airing"`
}

type RateItemRequest struct {
	RoomCode      string    `json:"room_code"`
	ParticipantID string    `json:"participant_id"`
	ItemID        uuid.UUID `json:"item_id"`
	Stars         int       `json:"stars"`
}

type RateItemResponse struct {
	State        models.RoomItemState `json:"state"`
	WindowClosed bool                 `json:"window_closed"`
}

type ExpireAiringRequest struct {
	RoomCode string `json:"room_code"`
}

type ExpireAiringResponse struct {
	Closed         bool `json:"closed"`
	TimeoutRatings int  `json:"timeout_ratings"`
}

type GetItemStatesRequest struct {
	RoomCode string     `json:"room_code"`
	ItemID   *uuid.UUID `json:"item_id,omitempty"`
}

type GetItemStatesResponse struct {
	States []models.RoomItemState `json:"states"`
}

type GetLeaderboardRequest struct {
	RoomCode string `json:"room_code"`
}

type GetLeaderboardResponse struct {
	Standings []scoreboard.Standing `json:"standings"`
}

type GetLineupRequest struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id"`
}

type GetLineupResponse struct {
	Lineup scoreboard.Lineup `json:"lineup"`
}
