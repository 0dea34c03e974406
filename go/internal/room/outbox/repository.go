package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/sqlutil"
)

var ErrEventNotFound = errors.New("outbox event not found or already sent")

const insertEventSQL = `
INSERT INTO room_outbox (id, room_code, event_type, payload)
VALUES ($1, $2, $3, $4)`

// Write appends evts to the outbox through q, normally the transaction that
// made the change the events describe.
func Write(ctx context.Context, q sqlutil.Querier, evts ...events.Event) error {
	for _, evt := range evts {
		if evt.RoomCode == "" {
			return fmt.Errorf("outbox event %s has no room code", evt.Type)
		}
		payload, err := evt.Marshal()
		if err != nil {
			return err
		}
		if !json.Valid(payload) {
			return fmt.Errorf("invalid %s payload", evt.Type)
		}
		if _, err := q.ExecContext(ctx, insertEventSQL, uuid.New(), evt.RoomCode, string(evt.Type), payload); err != nil {
			return fmt.Errorf("failed to insert %s outbox event: %w", evt.Type, err)
		}
	}
	return nil
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes evts outside any caller transaction.
func (r *Repository) Insert(ctx context.Context, evts ...events.Event) error {
	return Write(ctx, r.db, evts...)
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, room_code, event_type, payload, created_at
FROM room_outbox
WHERE sent_at IS NULL
ORDER BY created_at
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var out []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.RoomCode, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	var e OutboxEvent
	err := r.db.QueryRowContext(ctx, `
SELECT id, room_code, event_type, payload, created_at
FROM room_outbox
WHERE id = $1 AND sent_at IS NULL`, id).
		Scan(&e.ID, &e.RoomCode, &e.EventType, &e.Payload, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox event by ID: %w", err)
	}
	return &e, nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE room_outbox SET sent_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

// CountUnsent returns the relay backlog.
func (r *Repository) CountUnsent(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM room_outbox WHERE sent_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unsent outbox events: %w", err)
	}
	return n, nil
}

// PurgeSent deletes delivered events older than cutoff.
func (r *Repository) PurgeSent(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM room_outbox WHERE sent_at IS NOT NULL AND sent_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sent outbox events: %w", err)
	}
	return res.RowsAffected()
}
