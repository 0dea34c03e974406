// Package view recomputes every read-only view of a room (turn clock, airing
// countdown, item states, leaderboard, lineup) from persisted rows and the
// current time. Nothing here is cached or mutated.
package view

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/airing"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/rating"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/scoreboard"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/turn"
)

type RoomReader interface {
	GetRoom(ctx context.Context, code string) (*models.Room, error)
	ListParticipants(ctx context.Context, code string) ([]models.Participant, error)
	ListActiveRooms(ctx context.Context) ([]models.Room, error)
}

type PickReader interface {
	ListPicks(ctx context.Context, code string) ([]models.Pick, error)
}

type RatingReader interface {
	ListRatings(ctx context.Context, code string) ([]models.RatingEvent, error)
}

type CatalogReader interface {
	ListItems(ctx context.Context) ([]models.Item, error)
}

type App struct {
	rooms   RoomReader
	picks   PickReader
	ratings RatingReader
	catalog CatalogReader
	clock   clockwork.Clock
	window  time.Duration
}

func NewApp(rooms RoomReader, picks PickReader, ratings RatingReader, catalog CatalogReader, clock clockwork.Clock, window time.Duration) *App {
	return &App{
		rooms:   rooms,
		picks:   picks,
		ratings: ratings,
		catalog: catalog,
		clock:   clock,
		window:  window,
	}
}

type snapshot struct {
	room         models.Room
	participants []models.Participant
	picks        []models.Pick
	ratings      []models.RatingEvent
}

func (a *App) load(ctx context.Context, code string, withRatings bool) (*snapshot, error) {
	room, err := a.rooms.GetRoom(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	participants, err := a.rooms.ListParticipants(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	picks, err := a.picks.ListPicks(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}
	snap := &snapshot{room: *room, participants: participants, picks: picks}
	if withRatings {
		if snap.ratings, err = a.ratings.ListRatings(ctx, code); err != nil {
			return nil, fmt.Errorf("failed to load ratings: %w", err)
		}
	}
	return snap, nil
}

// Turn returns the draft clock.
func (a *App) Turn(ctx context.Context, code string) (*TurnView, error) {
	snap, err := a.load(ctx, code, false)
	if err != nil {
		return nil, err
	}
	tv := TurnOf(snap.room, snap.participants, snap.picks, a.clock.Now())
	return &tv, nil
}

// TurnOf is the pure computation behind Turn.
func TurnOf(room models.Room, participants []models.Participant, picks []models.Pick, now time.Time) TurnView {
	st := turn.NewState(participants, picks, room.Settings, room.SkipCount)
	tv := TurnView{
		RoomCode:      room.Code,
		Status:        room.Status,
		TotalPicks:    st.TotalPicks(),
		Skips:         room.SkipCount,
		Order:         st.Order,
		DraftComplete: st.Complete(),
	}
	if room.Status != models.RoomStatusDrafting || room.TurnAnchor == nil {
		return tv
	}

	status := st.Evaluate(*room.TurnAnchor, room.Settings.TurnDuration(), now)
	if status.Complete {
		return tv
	}
	deadline := status.Deadline
	tv.ParticipantID = status.Turn.ParticipantID
	tv.TurnIndex = status.Turn.Index
	tv.Round = status.Turn.Round
	tv.RemainingSeconds = seconds(status.Remaining)
	tv.Deadline = &deadline
	return tv
}

// Airing returns the rating window, or nil when nothing is airing.
func (a *App) Airing(room models.Room) *AiringView {
	c, ok := airing.For(room, a.window, a.clock.Now())
	if !ok {
		return nil
	}
	return &AiringView{
		ItemID:           c.ItemID,
		StartedAt:        c.StartedAt,
		Deadline:         c.Deadline,
		RemainingSeconds: seconds(c.Remaining),
		Expired:          c.Expired,
	}
}

// ItemStates derives one item's state, or every catalog item's when itemID is nil.
func (a *App) ItemStates(ctx context.Context, code string, itemID *uuid.UUID) ([]models.RoomItemState, error) {
	room, err := a.rooms.GetRoom(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	events, err := a.ratings.ListRatings(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	if itemID != nil {
		return []models.RoomItemState{rating.ItemState(*room, *itemID, events)}, nil
	}

	items, err := a.catalog.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	byID := rating.ItemStates(*room, ids, events)
	out := make([]models.RoomItemState, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out, nil
}

// Leaderboard ranks the room's drafters.
func (a *App) Leaderboard(ctx context.Context, code string) ([]scoreboard.Standing, error) {
	snap, err := a.load(ctx, code, true)
	if err != nil {
		return nil, err
	}
	return scoreboard.Leaderboard(snap.participants, snap.picks, pickedStates(snap)), nil
}

// Lineup breaks down one participant's score.
func (a *App) Lineup(ctx context.Context, code, participantID string) (*scoreboard.Lineup, error) {
	snap, err := a.load(ctx, code, true)
	if err != nil {
		return nil, err
	}
	lineup := scoreboard.BuildLineup(participantID, snap.picks, pickedStates(snap))
	return &lineup, nil
}

// RoomState assembles the full client view. participantID may be empty, in
// which case no lineup is included.
func (a *App) RoomState(ctx context.Context, code, participantID string) (*RoomState, error) {
	snap, err := a.load(ctx, code, true)
	if err != nil {
		return nil, err
	}
	now := a.clock.Now()
	states := pickedStates(snap)

	itemStates := make([]models.RoomItemState, 0, len(states))
	for _, st := range states {
		itemStates = append(itemStates, st)
	}
	sort.Slice(itemStates, func(i, j int) bool {
		return itemStates[i].ItemID.String() < itemStates[j].ItemID.String()
	})

	rs := &RoomState{
		Room:         snap.room,
		Participants: snap.participants,
		Turn:         TurnOf(snap.room, snap.participants, snap.picks, now),
		Airing:       a.Airing(snap.room),
		Picks:        snap.picks,
		ItemStates:   itemStates,
		Leaderboard:  scoreboard.Leaderboard(snap.participants, snap.picks, states),
		ServerTime:   now,
	}
	if participantID != "" {
		lineup := scoreboard.BuildLineup(participantID, snap.picks, states)
		rs.Lineup = &lineup
	}
	return rs, nil
}

// ActiveRooms lists rooms with a running turn clock or airing window. A room
// closed between the list query and its load is left out.
func (a *App) ActiveRooms(ctx context.Context) ([]ActiveRoom, error) {
	rooms, err := a.rooms.ListActiveRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rooms: %w", err)
	}

	now := a.clock.Now()
	out := make([]ActiveRoom, 0, len(rooms))
	for _, room := range rooms {
		ar := ActiveRoom{
			Code:            room.Code,
			Status:          room.Status,
			TurnDurationSec: room.Settings.TurnDurationSec,
			AiringItemID:    room.AiringItemID,
			AiringStartedAt: room.AiringStartedAt,
			AiringWindowSec: int(a.window / time.Second),
		}
		if room.Status == models.RoomStatusDrafting {
			snap, err := a.load(ctx, room.Code, false)
			if errors.Is(err, gameerr.ErrRoomNotFound) {
				// closed since the list query
				log.Debug().Str("room_code", room.Code).Msg("active room vanished")
				continue
			}
			if err != nil {
				return nil, err
			}
			tv := TurnOf(snap.room, snap.participants, snap.picks, now)
			ar.TurnIndex = tv.TurnIndex
			ar.ParticipantID = tv.ParticipantID
			ar.TurnAnchor = snap.room.TurnAnchor
		}
		out = append(out, ar)
	}
	return out, nil
}

// pickedStates derives the state of every picked item plus the airing one.
func pickedStates(snap *snapshot) map[uuid.UUID]models.RoomItemState {
	ids := make([]uuid.UUID, 0, len(snap.picks)+1)
	seen := make(map[uuid.UUID]bool)
	for _, pk := range snap.picks {
		if !seen[pk.ItemID] {
			seen[pk.ItemID] = true
			ids = append(ids, pk.ItemID)
		}
	}
	if snap.room.AiringItemID != nil && !seen[*snap.room.AiringItemID] {
		ids = append(ids, *snap.room.AiringItemID)
	}
	return rating.ItemStates(snap.room, ids, snap.ratings)
}

func seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
