// Package live runs the post-draft phase: the host airs items one at a time
// and every room member who does not own the airing item, host included,
// rates it before the window runs out.
package live

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/airing"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/rating"
)

// LiveRepository defines what the app layer needs from the repository
type LiveRepository interface {
	RecordRating(ctx context.Context, code string, decide func(Snapshot) (*Rating, error)) (*Rating, error)
	StartAiring(ctx context.Context, code string, decide func(Snapshot) (*AiringStart, error)) (*AiringStart, error)
	ExpireAiring(ctx context.Context, code string, decide func(Snapshot) (*Expiry, error)) (*Expiry, error)
}

// ItemLookup resolves catalog items
type ItemLookup interface {
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

// App handles rating and airing business logic
type App struct {
	repo    LiveRepository
	catalog ItemLookup
	clock   clockwork.Clock
	window  time.Duration
}

func NewApp(repo LiveRepository, catalog ItemLookup, clock clockwork.Clock, window time.Duration) *App {
	return &App{
		repo:    repo,
		catalog: catalog,
		clock:   clock,
		window:  window,
	}
}

// StartAiring puts itemID on air. Only the host may do it, only once the
// draft is complete, only once per item and only while nothing else airs.
func (a *App) StartAiring(ctx context.Context, code, hostID string, itemID uuid.UUID) (*models.Room, error) {
	if _, err := a.catalog.GetItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	start, err := a.repo.StartAiring(ctx, code, func(snap Snapshot) (*AiringStart, error) {
		room := snap.Room
		if room.HostID != hostID {
			return nil, gameerr.ErrNotHost
		}
		if room.Status != models.RoomStatusCompleted {
			return nil, fmt.Errorf("%w: room %s is %s", gameerr.ErrInvalidState, room.Code, room.Status)
		}
		if room.AiringItemID != nil {
			return nil, fmt.Errorf("%w: item %s is still airing", gameerr.ErrInvalidState, room.AiringItemID)
		}
		if rating.ItemState(room, itemID, snap.Ratings).Aired {
			return nil, gameerr.ErrAlreadyAired
		}

		now := a.clock.Now()
		room.AiringItemID = &itemID
		room.AiringStartedAt = &now
		return &AiringStart{
			Room: room,
			Events: []events.Event{events.New(room.Code, events.AiringStarted, events.AiringStartedPayload{
				RoomCode:  room.Code,
				ItemID:    itemID.String(),
				StartedAt: now,
				WindowSec: int(a.window / time.Second),
			})},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start airing: %w", err)
	}

	log.Info().Str("room_code", code).Str("item_id", itemID.String()).Msg("airing started")
	return &start.Room, nil
}

// RateItem records req's stars for the airing item. The rating that brings
// the last eligible response closes the window early.
func (a *App) RateItem(ctx context.Context, req RateItemRequest) (*Rating, error) {
	if req.Stars < models.MinStars || req.Stars > models.MaxStars {
		return nil, fmt.Errorf("%w: stars must be between %d and %d", gameerr.ErrValidation, models.MinStars, models.MaxStars)
	}

	rt, err := a.repo.RecordRating(ctx, req.RoomCode, func(snap Snapshot) (*Rating, error) {
		return a.decideRating(snap, req)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record rating: %w", err)
	}

	log.Info().
		Str("room_code", req.RoomCode).
		Str("participant_id", req.ParticipantID).
		Str("item_id", req.ItemID.String()).
		Int("stars", req.Stars).
		Bool("window_closed", rt.CloseWindow).
		Msg("rating recorded")
	return rt, nil
}

func (a *App) decideRating(snap Snapshot, req RateItemRequest) (*Rating, error) {
	room := snap.Room
	if !rating.IsMember(room, snap.Participants, req.ParticipantID) {
		return nil, gameerr.ErrNotParticipant
	}
	for _, e := range snap.Ratings {
		if e.ItemID == req.ItemID && e.ParticipantID == req.ParticipantID {
			return nil, gameerr.ErrDuplicateRating
		}
	}
	for _, pk := range snap.Picks {
		if pk.ItemID == req.ItemID && pk.ParticipantID == req.ParticipantID {
			return nil, gameerr.ErrOwnItem
		}
	}
	now := a.clock.Now()
	if c, ok := airing.For(room, a.window, now); !ok || c.ItemID != req.ItemID || c.Expired {
		return nil, gameerr.ErrNotAiring
	}

	e := models.RatingEvent{
		ID:            uuid.New(),
		RoomCode:      room.Code,
		ParticipantID: req.ParticipantID,
		ItemID:        req.ItemID,
		Stars:         req.Stars,
		CreatedAt:     now,
	}
	all := append(append([]models.RatingEvent(nil), snap.Ratings...), e)
	eligible := rating.EligibleRaters(room, snap.Participants, snap.Picks, req.ItemID)
	closing := rating.WindowComplete(eligible, all, req.ItemID)
	if closing {
		room.AiringItemID = nil
		room.AiringStartedAt = nil
	}

	rt := &Rating{
		Event:       e,
		State:       rating.ItemState(room, req.ItemID, all),
		CloseWindow: closing,
		Events: []events.Event{events.New(room.Code, events.RatingRecorded, events.RatingRecordedPayload{
			RoomCode:      room.Code,
			ParticipantID: e.ParticipantID,
			ItemID:        e.ItemID.String(),
			Stars:         e.Stars,
		})},
	}
	if closing {
		rt.Events = append(rt.Events, events.New(room.Code, events.AiringClosed, events.AiringClosedPayload{
			RoomCode: room.Code,
			ItemID:   e.ItemID.String(),
			ClosedAt: now,
			Reason:   events.ClosedAllRated,
		}))
	}
	return rt, nil
}

// ExpireAiring closes the airing window once it has run out, submitting a
// zero-star timeout for every eligible rater who stayed silent. It returns
// nil when nothing is airing or the window is still open.
func (a *App) ExpireAiring(ctx context.Context, code string) (*Expiry, error) {
	exp, err := a.repo.ExpireAiring(ctx, code, func(snap Snapshot) (*Expiry, error) {
		now := a.clock.Now()
		c, ok := airing.For(snap.Room, a.window, now)
		if !ok || !c.Expired {
			return nil, nil
		}

		eligible := rating.EligibleRaters(snap.Room, snap.Participants, snap.Picks, c.ItemID)
		pending := airing.Pending(eligible, snap.Ratings, c.ItemID)
		timeouts := airing.TimeoutRatings(snap.Room.Code, c.ItemID, pending, now)
		return &Expiry{
			ItemID:   c.ItemID,
			Timeouts: timeouts,
			At:       now,
			Events: []events.Event{events.New(snap.Room.Code, events.AiringClosed, events.AiringClosedPayload{
				RoomCode:       snap.Room.Code,
				ItemID:         c.ItemID.String(),
				ClosedAt:       now,
				Reason:         events.ClosedExpired,
				TimeoutRatings: len(timeouts),
			})},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expire airing: %w", err)
	}
	if exp != nil {
		log.Info().Str("room_code", code).Str("item_id", exp.ItemID.String()).Int("timeouts", len(exp.Timeouts)).Msg("airing expired")
	}
	return exp, nil
}
