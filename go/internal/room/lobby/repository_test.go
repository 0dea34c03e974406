package lobby

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/roomdb/roomdbtest"
)

func TestRepositoryCreateRoom(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	room := *lobbyRoom("QWE234", "host", 4)
	room.CreatedAt = t0

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WithArgs("QWE234", "host", "LOBBY", sqlmock.AnyArg(), t0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO room_outbox")).
		WithArgs(sqlmock.AnyArg(), "QWE234", "RoomCreated", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewRepository(db)
	err = repo.CreateRoom(context.Background(), room, events.New("QWE234", events.RoomCreated, events.RoomPayload{RoomCode: "QWE234"}))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateRoomCodeTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "rooms_pkey"})
	mock.ExpectRollback()

	err = NewRepository(db).CreateRoom(context.Background(), *lobbyRoom("QWE234", "host", 4))
	assert.ErrorIs(t, err, ErrCodeTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryStartDraftPersistsOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	room := lobbyRoom("QWE234", "host", 4)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("QWE234").WillReturnRows(roomdbtest.RoomRows(*room))
	mock.ExpectQuery("FROM participants").WithArgs("QWE234").WillReturnRows(roomdbtest.ParticipantRows(
		models.Participant{RoomCode: "QWE234", ID: "p1", DisplayName: "One", Ready: true, JoinedAt: t0},
		models.Participant{RoomCode: "QWE234", ID: "p2", DisplayName: "Two", Ready: true, JoinedAt: t0},
	))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms")).
		WithArgs("QWE234", "DRAFTING", t0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE participants SET turn_order")).
		WithArgs("QWE234", "p2", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE participants SET turn_order")).
		WithArgs("QWE234", "p1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO room_outbox")).
		WithArgs(sqlmock.AnyArg(), "QWE234", "DraftStarted", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen []models.Participant
	start, err := NewRepository(db).StartDraft(context.Background(), "QWE234", func(r models.Room, ps []models.Participant) (*DraftStart, error) {
		seen = ps
		return &DraftStart{
			Order:  []string{"p2", "p1"},
			At:     t0,
			Events: []events.Event{events.New(r.Code, events.DraftStarted, events.DraftStartedPayload{RoomCode: r.Code})},
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, start.Order)
	assert.Len(t, seen, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryStartDraftRollsBackOnRejection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("QWE234").WillReturnRows(roomdbtest.RoomRows(*lobbyRoom("QWE234", "host", 4)))
	mock.ExpectQuery("FROM participants").WithArgs("QWE234").WillReturnRows(roomdbtest.ParticipantRows())
	mock.ExpectRollback()

	_, err = NewRepository(db).StartDraft(context.Background(), "QWE234", func(models.Room, []models.Participant) (*DraftStart, error) {
		return nil, gameerr.ErrNotHost
	})
	assert.ErrorIs(t, err, gameerr.ErrNotHost)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySetReadyUnknownParticipant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE participants SET ready")).
		WithArgs("QWE234", "ghost", true).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = NewRepository(db).SetReady(context.Background(), "QWE234", "ghost", true)
	assert.ErrorIs(t, err, gameerr.ErrNotParticipant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListAndDeleteRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM picks WHERE room_code = $1")).
		WithArgs("QWE234").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM picks WHERE room_code = $1 AND id = $2")).
		WithArgs("QWE234", "a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewRepository(db)
	ids, err := repo.ListRecordIDs(context.Background(), "QWE234", RecordPicks)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	require.NoError(t, repo.DeleteRecord(context.Background(), "QWE234", RecordPicks, "a"))

	_, err = repo.ListRecordIDs(context.Background(), "QWE234", RecordKind("rooms; DROP TABLE rooms"))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDeleteRoomNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms")).WithArgs("QWE234").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = NewRepository(db).DeleteRoom(context.Background(), "QWE234")
	assert.ErrorIs(t, err, gameerr.ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
