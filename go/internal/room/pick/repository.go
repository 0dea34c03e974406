package pick

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/outbox"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/roomdb"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/sqlutil"
)

const (
	pickItemConstraint     = "picks_room_item_key"
	pickSequenceConstraint = "picks_room_sequence_key"
)

// Repository is the pick ledger.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListPicks(ctx context.Context, code string) ([]models.Pick, error) {
	return roomdb.ListPicks(ctx, r.db, code)
}

// Snapshot reads the room without locking it.
func (r *Repository) Snapshot(ctx context.Context, code string) (*Snapshot, error) {
	room, err := roomdb.GetRoom(ctx, r.db, code)
	if err != nil {
		return nil, err
	}
	return readSnapshot(ctx, r.db, room)
}

func lockedSnapshot(ctx context.Context, tx *sql.Tx, code string) (*Snapshot, error) {
	room, err := roomdb.LockRoom(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	return readSnapshot(ctx, tx, room)
}

func readSnapshot(ctx context.Context, q sqlutil.Querier, room *models.Room) (*Snapshot, error) {
	participants, err := roomdb.ListParticipants(ctx, q, room.Code)
	if err != nil {
		return nil, err
	}
	picks, err := roomdb.ListPicks(ctx, q, room.Code)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Room: *room, Participants: participants, Picks: picks}, nil
}

// ClaimPick locks the room, lets decide validate the pick against the locked
// snapshot and appends it. The unique constraints back up the lock: a second
// pick of the same item or sequence number fails even if a caller bypassed it.
func (r *Repository) ClaimPick(ctx context.Context, code string, decide func(Snapshot) (*Claim, error)) (*Claim, error) {
	return sqlutil.RunWithResult(ctx, r.db, func(tx *sql.Tx) (*Claim, error) {
		snap, err := lockedSnapshot(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		claim, err := decide(*snap)
		if err != nil {
			return nil, err
		}

		pk := claim.Pick
		_, err = tx.ExecContext(ctx, `
INSERT INTO picks (id, room_code, participant_id, item_id, item_name, category, sequence, round, picked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			pk.ID, code, pk.ParticipantID, pk.ItemID, pk.ItemName, pk.Category, pk.Sequence, pk.Round, pk.PickedAt)
		switch {
		case gameerr.IsUniqueViolation(err, pickItemConstraint):
			return nil, gameerr.ErrAlreadyPicked
		case gameerr.IsUniqueViolation(err, pickSequenceConstraint):
			return nil, gameerr.ErrNotYourTurn
		case err != nil:
			return nil, fmt.Errorf("failed to insert pick: %w", gameerr.Unavailable(err))
		}

		status := models.RoomStatusDrafting
		if claim.Complete {
			status = models.RoomStatusCompleted
		}
		_, err = tx.ExecContext(ctx, `UPDATE rooms SET turn_anchor = $2, status = $3, updated_at = $2 WHERE code = $1`,
			code, claim.At, string(status))
		if err != nil {
			return nil, fmt.Errorf("failed to advance turn: %w", gameerr.Unavailable(err))
		}
		if err := outbox.Write(ctx, tx, claim.Events...); err != nil {
			return nil, err
		}
		return claim, nil
	})
}

// SkipTurn locks the room and, when decide returns a Skip, bumps the skip
// counter and restarts the turn clock. A nil Skip leaves the room untouched.
func (r *Repository) SkipTurn(ctx context.Context, code string, decide func(Snapshot) (*Skip, error)) (*Skip, error) {
	return sqlutil.RunWithResult(ctx, r.db, func(tx *sql.Tx) (*Skip, error) {
		snap, err := lockedSnapshot(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		skip, err := decide(*snap)
		if err != nil || skip == nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
UPDATE rooms SET skip_count = skip_count + 1, turn_anchor = $2, updated_at = $2
WHERE code = $1`, code, skip.At)
		if err != nil {
			return nil, fmt.Errorf("failed to skip turn: %w", gameerr.Unavailable(err))
		}
		if err := outbox.Write(ctx, tx, skip.Events...); err != nil {
			return nil, err
		}
		return skip, nil
	})
}
