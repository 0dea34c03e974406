// Package lobby runs a room's lifecycle outside the draft and live phases:
// creation, joining, readiness, draft start, reset and close.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameconfig"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
)

// maxCodeAttempts bounds retries on room code collisions.
const maxCodeAttempts = 8

const maxDisplayNameLen = 32

// LobbyRepository defines what the app layer needs from the repository
type LobbyRepository interface {
	CreateRoom(ctx context.Context, room models.Room, evts ...events.Event) error
	GetRoom(ctx context.Context, code string) (*models.Room, error)
	ListParticipants(ctx context.Context, code string) ([]models.Participant, error)
	AddParticipant(ctx context.Context, code string, decide func(room models.Room, participants []models.Participant) (*Join, error)) (*models.Participant, error)
	SetReady(ctx context.Context, code, participantID string, ready bool, evts ...events.Event) error
	StartDraft(ctx context.Context, code string, decide func(room models.Room, participants []models.Participant) (*DraftStart, error)) (*DraftStart, error)
	ResetRoom(ctx context.Context, code string, decide func(room models.Room) (*Reset, error)) error
	ListRecordIDs(ctx context.Context, code string, kind RecordKind) ([]string, error)
	DeleteRecord(ctx context.Context, code string, kind RecordKind, id string) error
	DeleteRoom(ctx context.Context, code string, evts ...events.Event) error
}

// App handles room lifecycle business logic
type App struct {
	repo  LobbyRepository
	rules gameconfig.Rules
	clock clockwork.Clock
	rng   Randomizer
}

func NewApp(repo LobbyRepository, rules gameconfig.Rules, clock clockwork.Clock, rng Randomizer) *App {
	return &App{
		repo:  repo,
		rules: rules,
		clock: clock,
		rng:   rng,
	}
}

// CreateRoom validates the settings and opens a room under a fresh code.
func (a *App) CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	settings, err := a.settingsFor(req)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		room := models.Room{
			Code:      a.rng.Code(),
			HostID:    strings.TrimSpace(req.HostID),
			Status:    models.RoomStatusLobby,
			Settings:  settings,
			CreatedAt: now,
			UpdatedAt: now,
		}
		evt := events.New(room.Code, events.RoomCreated, events.RoomPayload{
			RoomCode: room.Code,
			HostID:   room.HostID,
			At:       now,
		})

		err := a.repo.CreateRoom(ctx, room, evt)
		if errors.Is(err, ErrCodeTaken) {
			log.Debug().Str("room_code", room.Code).Int("attempt", attempt+1).Msg("room code collision")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		log.Info().Str("room_code", room.Code).Str("host_id", room.HostID).Msg("room created")
		return &room, nil
	}
	return nil, fmt.Errorf("failed to create room: no free code after %d attempts", maxCodeAttempts)
}

func (a *App) settingsFor(req CreateRoomRequest) (models.RoomSettings, error) {
	if strings.TrimSpace(req.HostID) == "" {
		return models.RoomSettings{}, fmt.Errorf("%w: host id is required", gameerr.ErrValidation)
	}
	r := a.rules
	if req.TurnDurationSec < r.TurnDurationMinSec || req.TurnDurationSec > r.TurnDurationMaxSec {
		return models.RoomSettings{}, fmt.Errorf("%w: turn duration must be between %d and %d seconds",
			gameerr.ErrValidation, r.TurnDurationMinSec, r.TurnDurationMaxSec)
	}
	if req.MaxParticipants < r.ParticipantsMin || req.MaxParticipants > r.ParticipantsMax {
		return models.RoomSettings{}, fmt.Errorf("%w: max participants must be between %d and %d",
			gameerr.ErrValidation, r.ParticipantsMin, r.ParticipantsMax)
	}
	quota := req.PickQuota
	if quota == 0 {
		quota = r.PickQuotaDefault
	}
	if quota < 1 || quota > r.PickQuotaMax {
		return models.RoomSettings{}, fmt.Errorf("%w: pick quota must be between 1 and %d", gameerr.ErrValidation, r.PickQuotaMax)
	}
	return models.RoomSettings{
		TurnDurationSec: req.TurnDurationSec,
		MaxParticipants: req.MaxParticipants,
		SnakeDraft:      req.SnakeDraft,
		PickQuota:       quota,
	}, nil
}

// JoinRoom adds a participant to a lobby. A caller without an id is issued a
// guest id; joining again with the same id only refreshes name and icon.
func (a *App) JoinRoom(ctx context.Context, req JoinRoomRequest) (*models.Participant, error) {
	code := NormalizeCode(req.RoomCode)
	name := strings.TrimSpace(req.DisplayName)
	if name == "" || len([]rune(name)) > maxDisplayNameLen {
		return nil, fmt.Errorf("%w: display name must be 1-%d characters", gameerr.ErrValidation, maxDisplayNameLen)
	}
	id := strings.TrimSpace(req.ParticipantID)
	if id == "" {
		id = uuid.NewString()
	}

	p, err := a.repo.AddParticipant(ctx, code, func(room models.Room, participants []models.Participant) (*Join, error) {
		var existing *models.Participant
		seats := 0
		for i := range participants {
			if participants[i].ID == id {
				existing = &participants[i]
			}
			if participants[i].ID != room.HostID {
				seats++
			}
		}
		if existing == nil && room.Status != models.RoomStatusLobby {
			return nil, fmt.Errorf("%w: room %s is %s", gameerr.ErrInvalidState, room.Code, room.Status)
		}
		if existing == nil && id != room.HostID && seats >= room.Settings.MaxParticipants {
			return nil, gameerr.ErrRoomFull
		}

		p := models.Participant{
			RoomCode:    room.Code,
			ID:          id,
			DisplayName: name,
			Icon:        req.Icon,
			JoinedAt:    a.clock.Now(),
		}
		if existing != nil {
			p.Ready = existing.Ready
			p.TurnOrder = existing.TurnOrder
			p.JoinedAt = existing.JoinedAt
		}
		return &Join{
			Participant: p,
			Events: []events.Event{events.New(room.Code, events.ParticipantJoined, events.ParticipantPayload{
				RoomCode:      room.Code,
				ParticipantID: p.ID,
				DisplayName:   p.DisplayName,
				Icon:          p.Icon,
				Ready:         p.Ready,
			})},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", code, err)
	}

	log.Info().Str("room_code", code).Str("participant_id", p.ID).Msg("participant joined")
	return p, nil
}

func (a *App) SetReady(ctx context.Context, req SetReadyRequest) error {
	code := NormalizeCode(req.RoomCode)
	room, err := a.repo.GetRoom(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}
	if room.Status != models.RoomStatusLobby {
		return fmt.Errorf("%w: room %s is %s", gameerr.ErrInvalidState, code, room.Status)
	}

	evt := events.New(code, events.ParticipantReady, events.ParticipantPayload{
		RoomCode:      code,
		ParticipantID: req.ParticipantID,
		Ready:         req.Ready,
	})
	if err := a.repo.SetReady(ctx, code, req.ParticipantID, req.Ready, evt); err != nil {
		return fmt.Errorf("failed to set ready: %w", err)
	}
	return nil
}

// StartDraft shuffles the non-host participants into the turn order and
// starts the first turn clock.
func (a *App) StartDraft(ctx context.Context, code, hostID string) ([]string, error) {
	code = NormalizeCode(code)
	start, err := a.repo.StartDraft(ctx, code, func(room models.Room, participants []models.Participant) (*DraftStart, error) {
		if room.HostID != hostID {
			return nil, gameerr.ErrNotHost
		}
		if room.Status != models.RoomStatusLobby {
			return nil, fmt.Errorf("%w: room %s is %s", gameerr.ErrInvalidState, room.Code, room.Status)
		}

		var drafters []string
		for _, p := range participants {
			if p.ID == room.HostID {
				continue
			}
			if !p.Ready {
				return nil, fmt.Errorf("%w: %s is not ready", gameerr.ErrInvalidState, p.DisplayName)
			}
			drafters = append(drafters, p.ID)
		}
		if len(drafters) < a.rules.ParticipantsMin {
			return nil, fmt.Errorf("%w: need at least %d participants, have %d",
				gameerr.ErrInvalidState, a.rules.ParticipantsMin, len(drafters))
		}

		order := make([]string, len(drafters))
		for i, j := range a.rng.Perm(len(drafters)) {
			order[i] = drafters[j]
		}
		now := a.clock.Now()
		return &DraftStart{
			Order: order,
			At:    now,
			Events: []events.Event{events.New(room.Code, events.DraftStarted, events.DraftStartedPayload{
				RoomCode:        room.Code,
				Order:           order,
				StartedAt:       now,
				TurnDurationSec: room.Settings.TurnDurationSec,
				PickQuota:       room.Settings.PickQuota,
				SnakeDraft:      room.Settings.SnakeDraft,
			})},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start draft in room %s: %w", code, err)
	}

	log.Info().Str("room_code", code).Strs("order", start.Order).Msg("draft started")
	return start.Order, nil
}

// ResetRoom discards the draft and every rating and returns the room to its lobby.
func (a *App) ResetRoom(ctx context.Context, code, hostID string) error {
	code = NormalizeCode(code)
	err := a.repo.ResetRoom(ctx, code, func(room models.Room) (*Reset, error) {
		if room.HostID != hostID {
			return nil, gameerr.ErrNotHost
		}
		now := a.clock.Now()
		return &Reset{
			At: now,
			Events: []events.Event{events.New(room.Code, events.RoomReset, events.RoomPayload{
				RoomCode: room.Code,
				HostID:   room.HostID,
				At:       now,
			})},
		}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset room %s: %w", code, err)
	}

	log.Info().Str("room_code", code).Msg("room reset")
	return nil
}

// CloseRoom deletes every per-room row one by one, then the room itself.
// Failures are collected rather than stopping the sweep; if any occur the room
// row is kept so the host can retry the close.
func (a *App) CloseRoom(ctx context.Context, code, hostID string) error {
	code = NormalizeCode(code)
	room, err := a.repo.GetRoom(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}
	if room.HostID != hostID {
		return gameerr.ErrNotHost
	}

	var errs []error
	deleted := 0
	for _, kind := range closeOrder {
		ids, err := a.repo.ListRecordIDs(ctx, code, kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to list %s: %w", kind, err))
			continue
		}
		for _, id := range ids {
			if err := a.repo.DeleteRecord(ctx, code, kind, id); err != nil {
				errs = append(errs, fmt.Errorf("failed to delete %s %s: %w", kind, id, err))
				continue
			}
			deleted++
		}
	}
	if len(errs) > 0 {
		log.Warn().Str("room_code", code).Int("deleted", deleted).Int("failed", len(errs)).Msg("room close incomplete")
		return fmt.Errorf("room %s partially closed: %w", code, errors.Join(errs...))
	}

	evt := events.New(code, events.RoomClosed, events.RoomPayload{
		RoomCode: code,
		HostID:   room.HostID,
		At:       a.clock.Now(),
	})
	if err := a.repo.DeleteRoom(ctx, code, evt); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", code, err)
	}

	log.Info().Str("room_code", code).Int("deleted", deleted).Msg("room closed")
	return nil
}
