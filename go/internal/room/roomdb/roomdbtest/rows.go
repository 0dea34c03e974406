// Package roomdbtest builds sqlmock rows matching the roomdb column lists.
package roomdbtest

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
)

var (
	RoomColumns        = []string{"code", "host_id", "status", "settings", "draft_started_at", "turn_anchor", "skip_count", "airing_item_id", "airing_started_at", "created_at", "updated_at"}
	ParticipantColumns = []string{"room_code", "id", "display_name", "icon", "ready", "turn_order", "joined_at"}
	PickColumns        = []string{"id", "room_code", "participant_id", "item_id", "item_name", "category", "sequence", "round", "picked_at"}
	RatingColumns      = []string{"id", "room_code", "participant_id", "item_id", "stars", "created_at"}
)

func RoomRows(rooms ...models.Room) *sqlmock.Rows {
	rows := sqlmock.NewRows(RoomColumns)
	for _, r := range rooms {
		settings, _ := json.Marshal(r.Settings)
		var airingItem driver.Value
		if r.AiringItemID != nil {
			airingItem = r.AiringItemID.String()
		}
		rows.AddRow(r.Code, r.HostID, string(r.Status), settings, timeOrNil(r.DraftStartedAt), timeOrNil(r.TurnAnchor),
			int64(r.SkipCount), airingItem, timeOrNil(r.AiringStartedAt), r.CreatedAt, r.UpdatedAt)
	}
	return rows
}

func ParticipantRows(participants ...models.Participant) *sqlmock.Rows {
	rows := sqlmock.NewRows(ParticipantColumns)
	for _, p := range participants {
		var order driver.Value
		if p.TurnOrder != nil {
			order = int64(*p.TurnOrder)
		}
		rows.AddRow(p.RoomCode, p.ID, p.DisplayName, p.Icon, p.Ready, order, p.JoinedAt)
	}
	return rows
}

func PickRows(picks ...models.Pick) *sqlmock.Rows {
	rows := sqlmock.NewRows(PickColumns)
	for _, pk := range picks {
		rows.AddRow(pk.ID.String(), pk.RoomCode, pk.ParticipantID, pk.ItemID.String(), pk.ItemName, pk.Category,
			int64(pk.Sequence), int64(pk.Round), pk.PickedAt)
	}
	return rows
}

func RatingRows(events ...models.RatingEvent) *sqlmock.Rows {
	rows := sqlmock.NewRows(RatingColumns)
	for _, e := range events {
		rows.AddRow(e.ID.String(), e.RoomCode, e.ParticipantID, e.ItemID.String(), int64(e.Stars), e.CreatedAt)
	}
	return rows
}

func timeOrNil[T any](v *T) driver.Value {
	if v == nil {
		return nil
	}
	return *v
}
