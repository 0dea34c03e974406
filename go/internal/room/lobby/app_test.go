package lobby

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameconfig"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
)

var t0 = time.Date(2026, 2, 8, 18, 30, 0, 0, time.UTC)

type stubRand struct {
	codes []string
	perm  []int
}

func (s *stubRand) Code() string {
	c := s.codes[0]
	if len(s.codes) > 1 {
		s.codes = s.codes[1:]
	}
	return c
}

func (s *stubRand) Perm(n int) []int {
	if s.perm != nil {
		return s.perm
	}
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// fakeRepo keeps rooms in memory and runs decide callbacks the way the
// SQL repository does inside its transaction.
type fakeRepo struct {
	rooms        map[string]*models.Room
	participants map[string][]models.Participant
	records      map[RecordKind][]string
	deleteErr    map[string]error
	taken        map[string]bool
	events       []events.Event
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rooms:        map[string]*models.Room{},
		participants: map[string][]models.Participant{},
		records:      map[RecordKind][]string{},
		deleteErr:    map[string]error{},
		taken:        map[string]bool{},
	}
}

func (f *fakeRepo) CreateRoom(_ context.Context, room models.Room, evts ...events.Event) error {
	if f.taken[room.Code] || f.rooms[room.Code] != nil {
		return ErrCodeTaken
	}
	f.rooms[room.Code] = &room
	f.events = append(f.events, evts...)
	return nil
}

func (f *fakeRepo) GetRoom(_ context.Context, code string) (*models.Room, error) {
	r, ok := f.rooms[code]
	if !ok {
		return nil, gameerr.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) ListParticipants(_ context.Context, code string) ([]models.Participant, error) {
	return append([]models.Participant(nil), f.participants[code]...), nil
}

func (f *fakeRepo) AddParticipant(ctx context.Context, code string, decide func(models.Room, []models.Participant) (*Join, error)) (*models.Participant, error) {
	room, err := f.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	ps, _ := f.ListParticipants(ctx, code)
	join, err := decide(*room, ps)
	if err != nil {
		return nil, err
	}
	replaced := false
	for i := range f.participants[code] {
		if f.participants[code][i].ID == join.Participant.ID {
			f.participants[code][i].DisplayName = join.Participant.DisplayName
			f.participants[code][i].Icon = join.Participant.Icon
			replaced = true
		}
	}
	if !replaced {
		f.participants[code] = append(f.participants[code], join.Participant)
	}
	f.events = append(f.events, join.Events...)
	p := join.Participant
	return &p, nil
}

func (f *fakeRepo) SetReady(_ context.Context, code, participantID string, ready bool, evts ...events.Event) error {
	for i := range f.participants[code] {
		if f.participants[code][i].ID == participantID {
			f.participants[code][i].Ready = ready
			f.events = append(f.events, evts...)
			return nil
		}
	}
	return gameerr.ErrNotParticipant
}

func (f *fakeRepo) StartDraft(ctx context.Context, code string, decide func(models.Room, []models.Participant) (*DraftStart, error)) (*DraftStart, error) {
	room, err := f.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	ps, _ := f.ListParticipants(ctx, code)
	start, err := decide(*room, ps)
	if err != nil {
		return nil, err
	}
	f.rooms[code].Status = models.RoomStatusDrafting
	f.rooms[code].TurnAnchor = &start.At
	f.events = append(f.events, start.Events...)
	return start, nil
}

func (f *fakeRepo) ResetRoom(ctx context.Context, code string, decide func(models.Room) (*Reset, error)) error {
	room, err := f.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	reset, err := decide(*room)
	if err != nil {
		return err
	}
	f.rooms[code].Status = models.RoomStatusLobby
	f.events = append(f.events, reset.Events...)
	return nil
}

func (f *fakeRepo) ListRecordIDs(_ context.Context, _ string, kind RecordKind) ([]string, error) {
	return append([]string(nil), f.records[kind]...), nil
}

func (f *fakeRepo) DeleteRecord(_ context.Context, _ string, kind RecordKind, id string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	ids := f.records[kind][:0]
	for _, have := range f.records[kind] {
		if have != id {
			ids = append(ids, have)
		}
	}
	f.records[kind] = ids
	return nil
}

func (f *fakeRepo) DeleteRoom(_ context.Context, code string, evts ...events.Event) error {
	if f.rooms[code] == nil {
		return gameerr.ErrRoomNotFound
	}
	delete(f.rooms, code)
	f.events = append(f.events, evts...)
	return nil
}

func newTestApp(repo *fakeRepo, rng *stubRand) *App {
	return NewApp(repo, gameconfig.Default().Rules, clockwork.NewFakeClockAt(t0), rng)
}

func lobbyRoom(code, host string, max int) *models.Room {
	return &models.Room{
		Code:     code,
		HostID:   host,
		Status:   models.RoomStatusLobby,
		Settings: models.RoomSettings{TurnDurationSec: 30, MaxParticipants: max, SnakeDraft: true, PickQuota: 5},
	}
}

func TestCreateRoom(t *testing.T) {
	repo := newFakeRepo()
	app := newTestApp(repo, &stubRand{codes: []string{"ABC234"}})

	room, err := app.CreateRoom(context.Background(), CreateRoomRequest{HostID: "host", TurnDurationSec: 30, MaxParticipants: 4, SnakeDraft: true})
	require.NoError(t, err)

	assert.Equal(t, "ABC234", room.Code)
	assert.Equal(t, models.RoomStatusLobby, room.Status)
	assert.Equal(t, models.DefaultPickQuota, room.Settings.PickQuota)
	assert.Equal(t, t0, room.CreatedAt)
	require.Len(t, repo.events, 1)
	assert.Equal(t, events.RoomCreated, repo.events[0].Type)
}

func TestCreateRoomRetriesOnCollision(t *testing.T) {
	repo := newFakeRepo()
	repo.taken["AAAAAA"] = true
	app := newTestApp(repo, &stubRand{codes: []string{"AAAAAA", "BBBBBB"}})

	room, err := app.CreateRoom(context.Background(), CreateRoomRequest{HostID: "host", TurnDurationSec: 30, MaxParticipants: 4})
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", room.Code)
}

func TestCreateRoomGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newFakeRepo()
	repo.taken["AAAAAA"] = true
	app := newTestApp(repo, &stubRand{codes: []string{"AAAAAA"}})

	_, err := app.CreateRoom(context.Background(), CreateRoomRequest{HostID: "host", TurnDurationSec: 30, MaxParticipants: 4})
	assert.Error(t, err)
	assert.Empty(t, repo.rooms)
}

func TestCreateRoomValidation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateRoomRequest
	}{
		{"missing host", CreateRoomRequest{TurnDurationSec: 30, MaxParticipants: 4}},
		{"turn too short", CreateRoomRequest{HostID: "h", TurnDurationSec: 14, MaxParticipants: 4}},
		{"turn too long", CreateRoomRequest{HostID: "h", TurnDurationSec: 121, MaxParticipants: 4}},
		{"too few seats", CreateRoomRequest{HostID: "h", TurnDurationSec: 30, MaxParticipants: 1}},
		{"too many seats", CreateRoomRequest{HostID: "h", TurnDurationSec: 30, MaxParticipants: 13}},
		{"quota too large", CreateRoomRequest{HostID: "h", TurnDurationSec: 30, MaxParticipants: 4, PickQuota: 11}},
		{"negative quota", CreateRoomRequest{HostID: "h", TurnDurationSec: 30, MaxParticipants: 4, PickQuota: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(newFakeRepo(), &stubRand{codes: []string{"ABC234"}})
			_, err := app.CreateRoom(context.Background(), tt.req)
			assert.ErrorIs(t, err, gameerr.ErrValidation)
		})
	}
}

func TestJoinRoom(t *testing.T) {
	repo := newFakeRepo()
	repo.rooms["ABC234"] = lobbyRoom("ABC234", "host", 2)
	app := newTestApp(repo, &stubRand{})
	ctx := context.Background()

	guest, err := app.JoinRoom(ctx, JoinRoomRequest{RoomCode: " abc234 ", DisplayName: "Guest", Icon: "🦊"})
	require.NoError(t, err)
	_, err = uuid.Parse(guest.ID)
	assert.NoError(t, err, "guest id is a uuid")
	assert.Equal(t, "ABC234", guest.RoomCode)
	assert.Equal(t, t0, guest.JoinedAt)

	// the host watches without taking a seat
	_, err = app.JoinRoom(ctx, JoinRoomRequest{RoomCode: "ABC234", ParticipantID: "host", DisplayName: "Host"})
	require.NoError(t, err)

	_, err = app.JoinRoom(ctx, JoinRoomRequest{RoomCode: "ABC234", ParticipantID: "p2", DisplayName: "Two"})
	require.NoError(t, err)

	_, err = app.JoinRoom(ctx, JoinRoomRequest{RoomCode: "ABC234", ParticipantID: "p3", DisplayName: "Three"})
	assert.ErrorIs(t, err, gameerr.ErrRoomFull)

	again, err := app.JoinRoom(ctx, JoinRoomRequest{RoomCode: "ABC234", ParticipantID: "p2", DisplayName: "Two again", Icon: "🐙"})
	require.NoError(t, err, "re-joining a full room is allowed")
	assert.Equal(t, "Two again", again.DisplayName)
	assert.Len(t, repo.participants["ABC234"], 3)
}

func TestJoinRoomRejections(t *testing.T) {
	repo := newFakeRepo()
	drafting := lobbyRoom("DRAFT2", "host", 4)
	drafting.Status = models.RoomStatusDrafting
	repo.rooms["DRAFT2"] = drafting
	app := newTestApp(repo, &stubRand{})
	ctx := context.Background()

	_, err := app.JoinRoom(ctx, JoinRoomRequest{RoomCode: "DRAFT2", DisplayName: "Late"})
	assert.ErrorIs(t, err, gameerr.ErrInvalidState)

	_, err = app.JoinRoom(ctx, JoinRoomRequest{RoomCode: "NOPE22", DisplayName: "Lost"})
	assert.ErrorIs(t, err, gameerr.ErrRoomNotFound)

	_, err = app.JoinRoom(ctx, JoinRoomRequest{RoomCode: "DRAFT2", DisplayName: "   "})
	assert.ErrorIs(t, err, gameerr.ErrValidation)
}

func TestSetReady(t *testing.T) {
	repo := newFakeRepo()
	repo.rooms["ABC234"] = lobbyRoom("ABC234", "host", 4)
	repo.participants["ABC234"] = []models.Participant{{RoomCode: "ABC234", ID: "p1", DisplayName: "One"}}
	app := newTestApp(repo, &stubRand{})
	ctx := context.Background()

	require.NoError(t, app.SetReady(ctx, SetReadyRequest{RoomCode: "ABC234", ParticipantID: "p1", Ready: true}))
	assert.True(t, repo.participants["ABC234"][0].Ready)

	err := app.SetReady(ctx, SetReadyRequest{RoomCode: "ABC234", ParticipantID: "ghost", Ready: true})
	assert.ErrorIs(t, err, gameerr.ErrNotParticipant)
}

func readyRoom(repo *fakeRepo, ids ...string) {
	repo.rooms["ABC234"] = lobbyRoom("ABC234", "host", 6)
	for i, id := range ids {
		repo.participants["ABC234"] = append(repo.participants["ABC234"], models.Participant{
			RoomCode:    "ABC234",
			ID:          id,
			DisplayName: id,
			Ready:       true,
			JoinedAt:    t0.Add(time.Duration(i) * time.Second),
		})
	}
}

func TestStartDraft(t *testing.T) {
	repo := newFakeRepo()
	readyRoom(repo, "host", "p1", "p2", "p3")
	repo.participants["ABC234"][0].Ready = false // the host's flag is ignored
	app := newTestApp(repo, &stubRand{perm: []int{2, 0, 1}})

	order, err := app.StartDraft(context.Background(), "ABC234", "host")
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p1", "p2"}, order)
	assert.Equal(t, models.RoomStatusDrafting, repo.rooms["ABC234"].Status)
	assert.Equal(t, t0, *repo.rooms["ABC234"].TurnAnchor)

	last := repo.events[len(repo.events)-1]
	assert.Equal(t, events.DraftStarted, last.Type)
	assert.Equal(t, order, last.Payload.(events.DraftStartedPayload).Order)
}

func TestStartDraftPreconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("not host", func(t *testing.T) {
		repo := newFakeRepo()
		readyRoom(repo, "p1", "p2")
		_, err := newTestApp(repo, &stubRand{}).StartDraft(ctx, "ABC234", "p1")
		assert.ErrorIs(t, err, gameerr.ErrNotHost)
	})

	t.Run("not everyone ready", func(t *testing.T) {
		repo := newFakeRepo()
		readyRoom(repo, "p1", "p2")
		repo.participants["ABC234"][1].Ready = false
		_, err := newTestApp(repo, &stubRand{}).StartDraft(ctx, "ABC234", "host")
		assert.ErrorIs(t, err, gameerr.ErrInvalidState)
	})

	t.Run("too few drafters", func(t *testing.T) {
		repo := newFakeRepo()
		readyRoom(repo, "host", "p1")
		_, err := newTestApp(repo, &stubRand{}).StartDraft(ctx, "ABC234", "host")
		assert.ErrorIs(t, err, gameerr.ErrInvalidState)
	})

	t.Run("already drafting", func(t *testing.T) {
		repo := newFakeRepo()
		readyRoom(repo, "p1", "p2")
		repo.rooms["ABC234"].Status = models.RoomStatusDrafting
		_, err := newTestApp(repo, &stubRand{}).StartDraft(ctx, "ABC234", "host")
		assert.ErrorIs(t, err, gameerr.ErrInvalidState)
	})
}

func TestResetRoom(t *testing.T) {
	repo := newFakeRepo()
	readyRoom(repo, "p1", "p2")
	repo.rooms["ABC234"].Status = models.RoomStatusCompleted
	app := newTestApp(repo, &stubRand{})
	ctx := context.Background()

	assert.ErrorIs(t, app.ResetRoom(ctx, "ABC234", "p1"), gameerr.ErrNotHost)
	require.NoError(t, app.ResetRoom(ctx, "ABC234", "host"))
	assert.Equal(t, models.RoomStatusLobby, repo.rooms["ABC234"].Status)
	assert.Equal(t, events.RoomReset, repo.events[len(repo.events)-1].Type)
}

func TestCloseRoom(t *testing.T) {
	repo := newFakeRepo()
	readyRoom(repo, "p1", "p2")
	repo.records[RecordPicks] = []string{"pick-1", "pick-2"}
	repo.records[RecordRatings] = []string{"rating-1"}
	repo.records[RecordParticipants] = []string{"p1", "p2"}
	app := newTestApp(repo, &stubRand{})

	require.NoError(t, app.CloseRoom(context.Background(), "abc234", "host"))
	assert.Nil(t, repo.rooms["ABC234"])
	assert.Empty(t, repo.records[RecordPicks])
	assert.Empty(t, repo.records[RecordParticipants])
	assert.Equal(t, events.RoomClosed, repo.events[len(repo.events)-1].Type)
}

func TestCloseRoomAggregatesFailures(t *testing.T) {
	repo := newFakeRepo()
	readyRoom(repo, "p1", "p2")
	repo.records[RecordPicks] = []string{"pick-1", "pick-2", "pick-3"}
	repo.records[RecordParticipants] = []string{"p1", "p2"}
	errPick := errors.New("pick-2 locked")
	errP2 := errors.New("p2 locked")
	repo.deleteErr["pick-2"] = errPick
	repo.deleteErr["p2"] = errP2
	app := newTestApp(repo, &stubRand{})

	err := app.CloseRoom(context.Background(), "ABC234", "host")
	require.Error(t, err)
	assert.ErrorIs(t, err, errPick)
	assert.ErrorIs(t, err, errP2)

	// the sweep kept going past the failures
	assert.Equal(t, []string{"pick-2"}, repo.records[RecordPicks])
	assert.Equal(t, []string{"p2"}, repo.records[RecordParticipants])
	assert.NotNil(t, repo.rooms["ABC234"], "room is kept for a retry")

	delete(repo.deleteErr, "pick-2")
	delete(repo.deleteErr, "p2")
	require.NoError(t, app.CloseRoom(context.Background(), "ABC234", "host"))
	assert.Nil(t, repo.rooms["ABC234"])
}

func TestCloseRoomRequiresHost(t *testing.T) {
	repo := newFakeRepo()
	readyRoom(repo, "p1", "p2")
	err := newTestApp(repo, &stubRand{}).CloseRoom(context.Background(), "ABC234", "p1")
	assert.ErrorIs(t, err, gameerr.ErrNotHost)
	assert.NotNil(t, repo.rooms["ABC234"])
}
