// Package roomdb holds the row mappings shared by the room repositories: the
// column lists, scanners and the locked room read every write path starts
// from.
package roomdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/sqlutil"
)

const RoomColumns = `code, host_id, status, settings, draft_started_at, turn_anchor, skip_count,
	airing_item_id, airing_started_at, created_at, updated_at`

const ParticipantColumns = `room_code, id, display_name, icon, ready, turn_order, joined_at`

const PickColumns = `id, room_code, participant_id, item_id, item_name, category, sequence, round, picked_at`

const RatingColumns = `id, room_code, participant_id, item_id, stars, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func ScanRoom(s scanner) (*models.Room, error) {
	var (
		room           models.Room
		status         string
		settings       []byte
		draftStartedAt sql.NullTime
		turnAnchor     sql.NullTime
		airingItemID   uuid.NullUUID
		airingStarted  sql.NullTime
	)
	err := s.Scan(&room.Code, &room.HostID, &status, &settings, &draftStartedAt, &turnAnchor, &room.SkipCount,
		&airingItemID, &airingStarted, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settings, &room.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room settings: %w", err)
	}
	room.Status = models.RoomStatus(status)
	room.DraftStartedAt = sqlutil.TimePtr(draftStartedAt)
	room.TurnAnchor = sqlutil.TimePtr(turnAnchor)
	room.AiringItemID = sqlutil.UUIDPtr(airingItemID)
	room.AiringStartedAt = sqlutil.TimePtr(airingStarted)
	return &room, nil
}

// GetRoom reads a room; ErrRoomNotFound when the code is unknown.
func GetRoom(ctx context.Context, q sqlutil.Querier, code string) (*models.Room, error) {
	return getRoom(ctx, q, `SELECT `+RoomColumns+` FROM rooms WHERE code = $1`, code)
}

// LockRoom reads a room holding its row lock until the transaction ends.
// Every mutation of a room's draft or airing state goes through it, which
// serialises writers per room.
func LockRoom(ctx context.Context, tx *sql.Tx, code string) (*models.Room, error) {
	return getRoom(ctx, tx, `SELECT `+RoomColumns+` FROM rooms WHERE code = $1 FOR UPDATE`, code)
}

func getRoom(ctx context.Context, q sqlutil.Querier, query, code string) (*models.Room, error) {
	room, err := ScanRoom(q.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameerr.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", gameerr.Unavailable(err))
	}
	return room, nil
}

func ScanParticipant(s scanner) (*models.Participant, error) {
	var (
		p         models.Participant
		turnOrder sql.NullInt32
	)
	if err := s.Scan(&p.RoomCode, &p.ID, &p.DisplayName, &p.Icon, &p.Ready, &turnOrder, &p.JoinedAt); err != nil {
		return nil, err
	}
	p.TurnOrder = sqlutil.IntPtr(turnOrder)
	return &p, nil
}

func ListParticipants(ctx context.Context, q sqlutil.Querier, code string) ([]models.Participant, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+ParticipantColumns+` FROM participants WHERE room_code = $1 ORDER BY joined_at, id`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", gameerr.Unavailable(err))
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		p, err := ScanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func ScanPick(s scanner) (*models.Pick, error) {
	var pk models.Pick
	err := s.Scan(&pk.ID, &pk.RoomCode, &pk.ParticipantID, &pk.ItemID, &pk.ItemName, &pk.Category,
		&pk.Sequence, &pk.Round, &pk.PickedAt)
	if err != nil {
		return nil, err
	}
	return &pk, nil
}

func ListPicks(ctx context.Context, q sqlutil.Querier, code string) ([]models.Pick, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+PickColumns+` FROM picks WHERE room_code = $1 ORDER BY sequence`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", gameerr.Unavailable(err))
	}
	defer rows.Close()

	var out []models.Pick
	for rows.Next() {
		pk, err := ScanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		out = append(out, *pk)
	}
	return out, rows.Err()
}

func ListRatings(ctx context.Context, q sqlutil.Querier, code string) ([]models.RatingEvent, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+RatingColumns+` FROM rating_events WHERE room_code = $1 ORDER BY created_at, id`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", gameerr.Unavailable(err))
	}
	defer rows.Close()

	var out []models.RatingEvent
	for rows.Next() {
		var e models.RatingEvent
		if err := rows.Scan(&e.ID, &e.RoomCode, &e.ParticipantID, &e.ItemID, &e.Stars, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
