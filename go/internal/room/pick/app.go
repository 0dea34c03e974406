// Package pick is the draft's pick ledger: it validates picks against the
// turn order and quota, records them, and advances the turn clock on picks
// and timeouts.
package pick

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/turn"
)

// PickRepository defines what the app layer needs from the repository
type PickRepository interface {
	ListPicks(ctx context.Context, code string) ([]models.Pick, error)
	Snapshot(ctx context.Context, code string) (*Snapshot, error)
	ClaimPick(ctx context.Context, code string, decide func(Snapshot) (*Claim, error)) (*Claim, error)
	SkipTurn(ctx context.Context, code string, decide func(Snapshot) (*Skip, error)) (*Skip, error)
}

// CatalogRepository defines the catalog lookups a pick needs
type CatalogRepository interface {
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
}

// App handles pick business logic
type App struct {
	repo    PickRepository
	catalog CatalogRepository
	clock   clockwork.Clock
}

func NewApp(repo PickRepository, catalog CatalogRepository, clock clockwork.Clock) *App {
	return &App{
		repo:    repo,
		catalog: catalog,
		clock:   clock,
	}
}

// MakePick records req's item for its participant if they own the current turn.
func (a *App) MakePick(ctx context.Context, req MakePickRequest) (*Claim, error) {
	item, err := a.catalog.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	claim, err := a.repo.ClaimPick(ctx, req.RoomCode, func(snap Snapshot) (*Claim, error) {
		return a.decidePick(snap, req, *item)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to make pick: %w", err)
	}

	log.Info().
		Str("room_code", req.RoomCode).
		Str("participant_id", req.ParticipantID).
		Str("item_id", item.ID.String()).
		Int("sequence", claim.Pick.Sequence).
		Bool("draft_complete", claim.Complete).
		Msg("pick made")
	return claim, nil
}

func (a *App) decidePick(snap Snapshot, req MakePickRequest, item models.Item) (*Claim, error) {
	room := snap.Room
	if room.Status != models.RoomStatusDrafting {
		return nil, fmt.Errorf("%w: room %s is %s", gameerr.ErrInvalidState, room.Code, room.Status)
	}

	st := snap.State()
	if !isDrafter(st, req.ParticipantID) {
		return nil, gameerr.ErrNotParticipant
	}
	for _, pk := range snap.Picks {
		if pk.ItemID == item.ID {
			return nil, gameerr.ErrAlreadyPicked
		}
	}
	if st.Picks[req.ParticipantID] >= st.Quota {
		return nil, gameerr.ErrQuotaExceeded
	}
	current, ok := st.Current()
	if !ok || current.ParticipantID != req.ParticipantID {
		return nil, gameerr.ErrNotYourTurn
	}
	if req.ExpectedTurn != nil && *req.ExpectedTurn != current.Index {
		return nil, fmt.Errorf("%w: turn %d has passed", gameerr.ErrNotYourTurn, *req.ExpectedTurn)
	}

	now := a.clock.Now()
	seq := len(snap.Picks) + 1
	pk := models.Pick{
		ID:            uuid.New(),
		RoomCode:      room.Code,
		ParticipantID: req.ParticipantID,
		ItemID:        item.ID,
		ItemName:      item.Name,
		Category:      item.Category,
		Sequence:      seq,
		Round:         models.RoundFor(seq, len(st.Order)),
		PickedAt:      now,
	}

	st.Picks[req.ParticipantID]++
	next, _ := st.Current()
	claim := &Claim{
		Pick:     pk,
		Complete: st.Complete(),
		At:       now,
		Events: []events.Event{events.New(room.Code, events.PickMade, events.PickMadePayload{
			RoomCode:          room.Code,
			PickID:            pk.ID.String(),
			ParticipantID:     pk.ParticipantID,
			ItemID:            pk.ItemID.String(),
			ItemName:          pk.ItemName,
			Sequence:          pk.Sequence,
			Round:             pk.Round,
			MadeAt:            now,
			NextParticipantID: next.ParticipantID,
		})},
	}
	if claim.Complete {
		claim.Events = append(claim.Events, events.New(room.Code, events.DraftCompleted, events.DraftCompletedPayload{
			RoomCode:    room.Code,
			CompletedAt: now,
			TotalPicks:  seq,
			Skips:       room.SkipCount,
		}))
	}
	return claim, nil
}

// SkipTurn passes the turn at expectedTurn to the next drafter once its clock
// has run out. It returns nil without error when the turn has already moved
// on or is not yet due, so repeated timeouts for one turn are harmless.
func (a *App) SkipTurn(ctx context.Context, code string, expectedTurn int) (*Skip, error) {
	skip, err := a.repo.SkipTurn(ctx, code, func(snap Snapshot) (*Skip, error) {
		room := snap.Room
		if room.Status != models.RoomStatusDrafting || room.TurnAnchor == nil {
			return nil, nil
		}
		st := snap.State()
		now := a.clock.Now()
		status := st.Evaluate(*room.TurnAnchor, room.Settings.TurnDuration(), now)
		if status.Complete || status.Turn.Index != expectedTurn || !status.Expired {
			return nil, nil
		}

		st.Skips++
		next, _ := st.Current()
		return &Skip{
			ParticipantID: status.Turn.ParticipantID,
			TurnIndex:     status.Turn.Index,
			At:            now,
			Events: []events.Event{events.New(room.Code, events.TurnSkipped, events.TurnSkippedPayload{
				RoomCode:          room.Code,
				ParticipantID:     status.Turn.ParticipantID,
				TurnIndex:         status.Turn.Index,
				SkippedAt:         now,
				NextParticipantID: next.ParticipantID,
			})},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to skip turn: %w", err)
	}
	if skip != nil {
		log.Info().Str("room_code", code).Str("participant_id", skip.ParticipantID).Int("turn_index", skip.TurnIndex).Msg("turn skipped")
	}
	return skip, nil
}

func (a *App) ListPicks(ctx context.Context, code string) ([]models.Pick, error) {
	picks, err := a.repo.ListPicks(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	return picks, nil
}

// IsDraftComplete reports whether every drafter in the room holds the quota.
func (a *App) IsDraftComplete(ctx context.Context, code string) (bool, error) {
	snap, err := a.repo.Snapshot(ctx, code)
	if err != nil {
		return false, fmt.Errorf("failed to load room: %w", err)
	}
	return snap.State().Complete(), nil
}

// ListAvailableItems returns the catalog minus the items already drafted in the room.
func (a *App) ListAvailableItems(ctx context.Context, code string) ([]models.Item, error) {
	snap, err := a.repo.Snapshot(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	items, err := a.catalog.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	taken := make(map[uuid.UUID]bool, len(snap.Picks))
	for _, pk := range snap.Picks {
		taken[pk.ItemID] = true
	}
	available := make([]models.Item, 0, len(items))
	for _, it := range items {
		if !taken[it.ID] {
			available = append(available, it)
		}
	}
	return available, nil
}

func isDrafter(st turn.State, participantID string) bool {
	for _, id := range st.Order {
		if id == participantID {
			return true
		}
	}
	return false
}
