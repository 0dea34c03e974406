package live

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/outbox"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/roomdb"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/sqlutil"
)

const ratingConstraint = "rating_events_room_item_participant_key"

const insertRatingSQL = `
INSERT INTO rating_events (id, room_code, participant_id, item_id, stars, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// Repository is the rating ledger plus the room's airing marker.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListRatings(ctx context.Context, code string) ([]models.RatingEvent, error) {
	return roomdb.ListRatings(ctx, r.db, code)
}

func lockedSnapshot(ctx context.Context, tx *sql.Tx, code string) (*Snapshot, error) {
	room, err := roomdb.LockRoom(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	participants, err := roomdb.ListParticipants(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	picks, err := roomdb.ListPicks(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	ratings, err := roomdb.ListRatings(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Room: *room, Participants: participants, Picks: picks, Ratings: ratings}, nil
}

// RecordRating appends the rating decide accepts and, when it completes the
// window, clears the airing marker in the same transaction.
func (r *Repository) RecordRating(ctx context.Context, code string, decide func(Snapshot) (*Rating, error)) (*Rating, error) {
	return sqlutil.RunWithResult(ctx, r.db, func(tx *sql.Tx) (*Rating, error) {
		snap, err := lockedSnapshot(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		rt, err := decide(*snap)
		if err != nil {
			return nil, err
		}

		e := rt.Event
		_, err = tx.ExecContext(ctx, insertRatingSQL, e.ID, code, e.ParticipantID, e.ItemID, e.Stars, e.CreatedAt)
		if gameerr.IsUniqueViolation(err, ratingConstraint) {
			return nil, gameerr.ErrDuplicateRating
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert rating: %w", gameerr.Unavailable(err))
		}
		if rt.CloseWindow {
			if err := clearAiring(ctx, tx, code, e.ItemID, e.CreatedAt); err != nil {
				return nil, err
			}
		}
		if err := outbox.Write(ctx, tx, rt.Events...); err != nil {
			return nil, err
		}
		return rt, nil
	})
}

// StartAiring sets the airing marker decide returns.
func (r *Repository) StartAiring(ctx context.Context, code string, decide func(Snapshot) (*AiringStart, error)) (*AiringStart, error) {
	return sqlutil.RunWithResult(ctx, r.db, func(tx *sql.Tx) (*AiringStart, error) {
		snap, err := lockedSnapshot(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		start, err := decide(*snap)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
UPDATE rooms SET airing_item_id = $2, airing_started_at = $3, updated_at = $3
WHERE code = $1`, code, sqlutil.NullUUID(start.Room.AiringItemID), sqlutil.NullTime(start.Room.AiringStartedAt))
		if err != nil {
			return nil, fmt.Errorf("failed to start airing: %w", gameerr.Unavailable(err))
		}
		if err := outbox.Write(ctx, tx, start.Events...); err != nil {
			return nil, err
		}
		return start, nil
	})
}

// ExpireAiring writes the timeout ratings decide returns and clears the
// marker. Timeouts that race a late real rating are dropped by ON CONFLICT.
// A nil Expiry leaves the room untouched.
func (r *Repository) ExpireAiring(ctx context.Context, code string, decide func(Snapshot) (*Expiry, error)) (*Expiry, error) {
	return sqlutil.RunWithResult(ctx, r.db, func(tx *sql.Tx) (*Expiry, error) {
		snap, err := lockedSnapshot(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		exp, err := decide(*snap)
		if err != nil || exp == nil {
			return nil, err
		}

		for _, e := range exp.Timeouts {
			_, err := tx.ExecContext(ctx, insertRatingSQL+`
ON CONFLICT ON CONSTRAINT `+ratingConstraint+` DO NOTHING`,
				e.ID, code, e.ParticipantID, e.ItemID, e.Stars, e.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("failed to insert timeout rating: %w", gameerr.Unavailable(err))
			}
		}
		if err := clearAiring(ctx, tx, code, exp.ItemID, exp.At); err != nil {
			return nil, err
		}
		if err := outbox.Write(ctx, tx, exp.Events...); err != nil {
			return nil, err
		}
		return exp, nil
	})
}

func clearAiring(ctx context.Context, tx *sql.Tx, code string, itemID uuid.UUID, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
UPDATE rooms SET airing_item_id = NULL, airing_started_at = NULL, updated_at = $3
WHERE code = $1 AND airing_item_id = $2`, code, itemID, at)
	if err != nil {
		return fmt.Errorf("failed to clear airing: %w", gameerr.Unavailable(err))
	}
	return nil
}
