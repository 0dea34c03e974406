package lobby

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/outbox"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/roomdb"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/sqlutil"
)

// ErrCodeTaken is returned by CreateRoom when the generated code collides.
var ErrCodeTaken = errors.New("room code already in use")

// Reset is what the repository persists when a room goes back to the lobby.
type Reset struct {
	At     time.Time
	Events []events.Event
}

// Repository persists rooms and participants.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateRoom(ctx context.Context, room models.Room, evts ...events.Event) error {
	settings, err := json.Marshal(room.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal room settings: %w", err)
	}

	err = sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO rooms (code, host_id, status, settings, skip_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, $5, $5)`,
			room.Code, room.HostID, string(room.Status), settings, room.CreatedAt)
		if err != nil {
			return err
		}
		return outbox.Write(ctx, tx, evts...)
	})
	if gameerr.IsUniqueViolation(err, "rooms_pkey") {
		return ErrCodeTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create room: %w", gameerr.Unavailable(err))
	}
	return nil
}

func (r *Repository) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	return roomdb.GetRoom(ctx, r.db, code)
}

func (r *Repository) ListParticipants(ctx context.Context, code string) ([]models.Participant, error) {
	return roomdb.ListParticipants(ctx, r.db, code)
}

// ListActiveRooms returns rooms with a running turn clock or an airing item.
func (r *Repository) ListActiveRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+roomdb.RoomColumns+`
FROM rooms
WHERE status = $1 OR airing_item_id IS NOT NULL
ORDER BY code`, string(models.RoomStatusDrafting))
	if err != nil {
		return nil, fmt.Errorf("failed to list active rooms: %w", gameerr.Unavailable(err))
	}
	defer rows.Close()

	var out []models.Room
	for rows.Next() {
		room, err := roomdb.ScanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		out = append(out, *room)
	}
	return out, rows.Err()
}

// AddParticipant locks the room and lets decide accept or reject the join
// against the current membership. Re-joining refreshes name and icon.
func (r *Repository) AddParticipant(ctx context.Context, code string, decide func(room models.Room, participants []models.Participant) (*Join, error)) (*models.Participant, error) {
	return sqlutil.RunWithResult(ctx, r.db, func(tx *sql.Tx) (*models.Participant, error) {
		room, err := roomdb.LockRoom(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		participants, err := roomdb.ListParticipants(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		join, err := decide(*room, participants)
		if err != nil {
			return nil, err
		}

		p := join.Participant
		_, err = tx.ExecContext(ctx, `
INSERT INTO participants (room_code, id, display_name, icon, ready, joined_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (room_code, id) DO UPDATE
SET display_name = EXCLUDED.display_name, icon = EXCLUDED.icon`,
			code, p.ID, p.DisplayName, p.Icon, p.Ready, p.JoinedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert participant: %w", gameerr.Unavailable(err))
		}
		if err := outbox.Write(ctx, tx, join.Events...); err != nil {
			return nil, err
		}
		return &p, nil
	})
}

func (r *Repository) SetReady(ctx context.Context, code, participantID string, ready bool, evts ...events.Event) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE participants SET ready = $3 WHERE room_code = $1 AND id = $2`,
			code, participantID, ready)
		if err != nil {
			return fmt.Errorf("failed to set ready: %w", gameerr.Unavailable(err))
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return gameerr.ErrNotParticipant
		}
		return outbox.Write(ctx, tx, evts...)
	})
}

// StartDraft locks the room, lets decide build the turn order and persists it
// together with the drafting status and the first turn anchor.
func (r *Repository) StartDraft(ctx context.Context, code string, decide func(room models.Room, participants []models.Participant) (*DraftStart, error)) (*DraftStart, error) {
	return sqlutil.RunWithResult(ctx, r.db, func(tx *sql.Tx) (*DraftStart, error) {
		room, err := roomdb.LockRoom(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		participants, err := roomdb.ListParticipants(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		start, err := decide(*room, participants)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
UPDATE rooms
SET status = $2, draft_started_at = $3, turn_anchor = $3, skip_count = 0, updated_at = $3
WHERE code = $1`, code, string(models.RoomStatusDrafting), start.At)
		if err != nil {
			return nil, fmt.Errorf("failed to start draft: %w", gameerr.Unavailable(err))
		}
		for i, id := range start.Order {
			order := i
			_, err := tx.ExecContext(ctx, `UPDATE participants SET turn_order = $3 WHERE room_code = $1 AND id = $2`,
				code, id, sqlutil.NullInt32(&order))
			if err != nil {
				return nil, fmt.Errorf("failed to assign turn order: %w", gameerr.Unavailable(err))
			}
		}
		if err := outbox.Write(ctx, tx, start.Events...); err != nil {
			return nil, err
		}
		return start, nil
	})
}

// ResetRoom drops the room's picks and ratings and returns it to the lobby.
func (r *Repository) ResetRoom(ctx context.Context, code string, decide func(room models.Room) (*Reset, error)) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		room, err := roomdb.LockRoom(ctx, tx, code)
		if err != nil {
			return err
		}
		reset, err := decide(*room)
		if err != nil {
			return err
		}

		stmts := []struct {
			query string
			args  []any
		}{
			{`DELETE FROM rating_events WHERE room_code = $1`, []any{code}},
			{`DELETE FROM picks WHERE room_code = $1`, []any{code}},
			{`UPDATE participants SET turn_order = NULL, ready = false WHERE room_code = $1`, []any{code}},
			{`
UPDATE rooms
SET status = $2, draft_started_at = NULL, turn_anchor = NULL, skip_count = 0,
    airing_item_id = NULL, airing_started_at = NULL, updated_at = $3
WHERE code = $1`, []any{code, string(models.RoomStatusLobby), reset.At}},
		}
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s.query, s.args...); err != nil {
				return fmt.Errorf("failed to reset room: %w", gameerr.Unavailable(err))
			}
		}
		return outbox.Write(ctx, tx, reset.Events...)
	})
}

// ListRecordIDs returns the ids of one kind of per-room row.
func (r *Repository) ListRecordIDs(ctx context.Context, code string, kind RecordKind) ([]string, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM `+table+` WHERE room_code = $1`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, gameerr.Unavailable(err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", kind, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) DeleteRecord(ctx context.Context, code string, kind RecordKind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE room_code = $1 AND id = $2`, code, id); err != nil {
		return gameerr.Unavailable(err)
	}
	return nil
}

// DeleteRoom removes the room row and records evts in the same transaction.
func (r *Repository) DeleteRoom(ctx context.Context, code string, evts ...events.Event) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE code = $1`, code)
		if err != nil {
			return fmt.Errorf("failed to delete room: %w", gameerr.Unavailable(err))
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return gameerr.ErrRoomNotFound
		}
		return outbox.Write(ctx, tx, evts...)
	})
}

func tableFor(kind RecordKind) (string, error) {
	switch kind {
	case RecordRatings, RecordPicks, RecordParticipants, RecordOutbox:
		return string(kind), nil
	default:
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
}
