package pick

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/roomdb/roomdbtest"
)

func expectLockedSnapshot(mock sqlmock.Sqlmock, repo *fakeRepo) {
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("QWE234").WillReturnRows(roomdbtest.RoomRows(repo.room))
	mock.ExpectQuery("FROM participants").WithArgs("QWE234").WillReturnRows(roomdbtest.ParticipantRows(repo.participants...))
	mock.ExpectQuery("FROM picks").WithArgs("QWE234").WillReturnRows(roomdbtest.PickRows(repo.picks...))
}

func TestRepositoryClaimPick(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fixture := draftingRoom(1, "A", "B")
	pk := models.Pick{ID: uuid.New(), RoomCode: "QWE234", ParticipantID: "A", ItemID: uuid.New(), ItemName: "Ad", Sequence: 1, Round: 1, PickedAt: t0}

	expectLockedSnapshot(mock, fixture)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO picks")).
		WithArgs(pk.ID, "QWE234", "A", pk.ItemID, "Ad", "", 1, 1, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET turn_anchor")).
		WithArgs("QWE234", t0, "DRAFTING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO room_outbox")).
		WithArgs(sqlmock.AnyArg(), "QWE234", "PickMade", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen Snapshot
	claim, err := NewRepository(db).ClaimPick(context.Background(), "QWE234", func(snap Snapshot) (*Claim, error) {
		seen = snap
		return &Claim{
			Pick:   pk,
			At:     t0,
			Events: []events.Event{events.New("QWE234", events.PickMade, events.PickMadePayload{RoomCode: "QWE234"})},
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, pk.ID, claim.Pick.ID)
	assert.Equal(t, []string{"A", "B"}, seen.State().Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryClaimPickMapsUniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"picks_room_item_key", gameerr.ErrAlreadyPicked},
		{"picks_room_sequence_key", gameerr.ErrNotYourTurn},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			expectLockedSnapshot(mock, draftingRoom(1, "A", "B"))
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO picks")).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})
			mock.ExpectRollback()

			_, err = NewRepository(db).ClaimPick(context.Background(), "QWE234", func(Snapshot) (*Claim, error) {
				return &Claim{Pick: models.Pick{ID: uuid.New(), ItemID: uuid.New()}, At: t0}, nil
			})
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepositorySkipTurnNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectLockedSnapshot(mock, draftingRoom(1, "A", "B"))
	mock.ExpectCommit()

	skip, err := NewRepository(db).SkipTurn(context.Background(), "QWE234", func(Snapshot) (*Skip, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, skip)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySkipTurnBumpsCounter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectLockedSnapshot(mock, draftingRoom(1, "A", "B"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET skip_count = skip_count + 1")).
		WithArgs("QWE234", t0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	skip, err := NewRepository(db).SkipTurn(context.Background(), "QWE234", func(Snapshot) (*Skip, error) {
		return &Skip{ParticipantID: "A", At: t0}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "A", skip.ParticipantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
