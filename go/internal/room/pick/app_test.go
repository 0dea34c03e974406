package pick

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
)

var t0 = time.Date(2026, 2, 8, 19, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu           sync.Mutex
	room         models.Room
	participants []models.Participant
	picks        []models.Pick
	events       []events.Event
}

func (f *fakeRepo) snapshot() Snapshot {
	return Snapshot{
		Room:         f.room,
		Participants: append([]models.Participant(nil), f.participants...),
		Picks:        append([]models.Pick(nil), f.picks...),
	}
}

func (f *fakeRepo) ListPicks(context.Context, string) ([]models.Pick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Pick(nil), f.picks...), nil
}

func (f *fakeRepo) Snapshot(_ context.Context, code string) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code != f.room.Code {
		return nil, gameerr.ErrRoomNotFound
	}
	snap := f.snapshot()
	return &snap, nil
}

func (f *fakeRepo) ClaimPick(_ context.Context, code string, decide func(Snapshot) (*Claim, error)) (*Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code != f.room.Code {
		return nil, gameerr.ErrRoomNotFound
	}
	claim, err := decide(f.snapshot())
	if err != nil {
		return nil, err
	}
	f.picks = append(f.picks, claim.Pick)
	at := claim.At
	f.room.TurnAnchor = &at
	if claim.Complete {
		f.room.Status = models.RoomStatusCompleted
	}
	f.events = append(f.events, claim.Events...)
	return claim, nil
}

func (f *fakeRepo) SkipTurn(_ context.Context, code string, decide func(Snapshot) (*Skip, error)) (*Skip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	skip, err := decide(f.snapshot())
	if err != nil || skip == nil {
		return nil, err
	}
	f.room.SkipCount++
	at := skip.At
	f.room.TurnAnchor = &at
	f.events = append(f.events, skip.Events...)
	return skip, nil
}

type fakeCatalog struct {
	items []models.Item
}

func (c *fakeCatalog) GetItem(_ context.Context, id uuid.UUID) (*models.Item, error) {
	for _, it := range c.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, gameerr.ErrItemNotFound
}

func (c *fakeCatalog) ListItems(context.Context) ([]models.Item, error) {
	return c.items, nil
}

func intPtr(i int) *int { return &i }

// draftingRoom seats ids in turn order.
func draftingRoom(quota int, ids ...string) *fakeRepo {
	anchor := t0
	repo := &fakeRepo{room: models.Room{
		Code:       "QWE234",
		HostID:     "host",
		Status:     models.RoomStatusDrafting,
		Settings:   models.RoomSettings{TurnDurationSec: 30, MaxParticipants: 6, SnakeDraft: true, PickQuota: quota},
		TurnAnchor: &anchor,
	}}
	for i, id := range ids {
		repo.participants = append(repo.participants, models.Participant{
			RoomCode: "QWE234", ID: id, DisplayName: id, TurnOrder: intPtr(i), JoinedAt: t0,
		})
	}
	return repo
}

func catalogOf(n int) *fakeCatalog {
	c := &fakeCatalog{}
	for i := 0; i < n; i++ {
		c.items = append(c.items, models.Item{ID: uuid.New(), Name: "Ad", Category: "auto"})
	}
	return c
}

func TestMakePickFollowsSnakeOrder(t *testing.T) {
	repo := draftingRoom(2, "A", "B", "C")
	cat := catalogOf(6)
	clock := clockwork.NewFakeClockAt(t0)
	app := NewApp(repo, cat, clock)
	ctx := context.Background()

	for i, who := range []string{"A", "B", "C", "C", "B", "A"} {
		clock.Advance(5 * time.Second)
		claim, err := app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: who, ItemID: cat.items[i].ID})
		require.NoError(t, err, "pick %d by %s", i+1, who)
		assert.Equal(t, i+1, claim.Pick.Sequence)
		assert.Equal(t, i/3+1, claim.Pick.Round)
		assert.Equal(t, clock.Now(), *repo.room.TurnAnchor, "anchor resets on every pick")
		assert.Equal(t, i == 5, claim.Complete)
	}

	assert.Equal(t, models.RoomStatusCompleted, repo.room.Status)
	last := repo.events[len(repo.events)-1]
	assert.Equal(t, events.DraftCompleted, last.Type)
	assert.Equal(t, 6, last.Payload.(events.DraftCompletedPayload).TotalPicks)
}

func TestMakePickRejections(t *testing.T) {
	ctx := context.Background()
	cat := catalogOf(3)

	t.Run("not your turn", func(t *testing.T) {
		app := NewApp(draftingRoom(2, "A", "B"), cat, clockwork.NewFakeClockAt(t0))
		_, err := app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "B", ItemID: cat.items[0].ID})
		assert.ErrorIs(t, err, gameerr.ErrNotYourTurn)
	})

	t.Run("stale expected turn", func(t *testing.T) {
		app := NewApp(draftingRoom(2, "A", "B"), cat, clockwork.NewFakeClockAt(t0))
		_, err := app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "A", ItemID: cat.items[0].ID, ExpectedTurn: intPtr(3)})
		assert.ErrorIs(t, err, gameerr.ErrNotYourTurn)
	})

	t.Run("already picked", func(t *testing.T) {
		repo := draftingRoom(2, "A", "B")
		app := NewApp(repo, cat, clockwork.NewFakeClockAt(t0))
		_, err := app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "A", ItemID: cat.items[0].ID})
		require.NoError(t, err)
		_, err = app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "B", ItemID: cat.items[0].ID})
		assert.ErrorIs(t, err, gameerr.ErrAlreadyPicked)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		repo := draftingRoom(1, "A", "B", "C")
		repo.picks = []models.Pick{{ID: uuid.New(), RoomCode: "QWE234", ParticipantID: "A", ItemID: uuid.New(), Sequence: 1}}
		app := NewApp(repo, cat, clockwork.NewFakeClockAt(t0))
		_, err := app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "A", ItemID: cat.items[1].ID})
		assert.ErrorIs(t, err, gameerr.ErrQuotaExceeded)
	})

	t.Run("host is not a drafter", func(t *testing.T) {
		app := NewApp(draftingRoom(2, "A", "B"), cat, clockwork.NewFakeClockAt(t0))
		_, err := app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "host", ItemID: cat.items[0].ID})
		assert.ErrorIs(t, err, gameerr.ErrNotParticipant)
	})

	t.Run("lobby", func(t *testing.T) {
		repo := draftingRoom(2, "A", "B")
		repo.room.Status = models.RoomStatusLobby
		app := NewApp(repo, cat, clockwork.NewFakeClockAt(t0))
		_, err := app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "A", ItemID: cat.items[0].ID})
		assert.ErrorIs(t, err, gameerr.ErrInvalidState)
	})

	t.Run("unknown item", func(t *testing.T) {
		app := NewApp(draftingRoom(2, "A", "B"), cat, clockwork.NewFakeClockAt(t0))
		_, err := app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "A", ItemID: uuid.New()})
		assert.ErrorIs(t, err, gameerr.ErrItemNotFound)
	})
}

func TestConcurrentPicksOfOneItemYieldOnePick(t *testing.T) {
	repo := draftingRoom(3, "A", "B")
	cat := catalogOf(1)
	app := NewApp(repo, cat, clockwork.NewFakeClockAt(t0))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = app.MakePick(context.Background(), MakePickRequest{RoomCode: "QWE234", ParticipantID: "A", ItemID: cat.items[0].ID})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, repo.picks, 1)
}

func TestSkipTurn(t *testing.T) {
	repo := draftingRoom(2, "A", "B", "C")
	cat := catalogOf(6)
	clock := clockwork.NewFakeClockAt(t0)
	app := NewApp(repo, cat, clock)
	ctx := context.Background()

	skip, err := app.SkipTurn(ctx, "QWE234", 0)
	require.NoError(t, err)
	assert.Nil(t, skip, "clock still running")

	clock.Advance(30 * time.Second)
	skip, err = app.SkipTurn(ctx, "QWE234", 0)
	require.NoError(t, err)
	require.NotNil(t, skip)
	assert.Equal(t, "A", skip.ParticipantID)
	assert.Equal(t, 1, repo.room.SkipCount)
	assert.Equal(t, clock.Now(), *repo.room.TurnAnchor)
	assert.Equal(t, "B", repo.events[0].Payload.(events.TurnSkippedPayload).NextParticipantID)

	skip, err = app.SkipTurn(ctx, "QWE234", 0)
	require.NoError(t, err)
	assert.Nil(t, skip, "a repeated timeout for the same turn is a no-op")

	// B owns turn 1 now and A is owed a pick later.
	_, err = app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "B", ItemID: cat.items[0].ID, ExpectedTurn: intPtr(1)})
	require.NoError(t, err)
}

func TestSkipTurnIgnoresCompletedRoom(t *testing.T) {
	repo := draftingRoom(2, "A", "B")
	repo.room.Status = models.RoomStatusCompleted
	clock := clockwork.NewFakeClockAt(t0.Add(time.Hour))
	skip, err := NewApp(repo, catalogOf(1), clock).SkipTurn(context.Background(), "QWE234", 0)
	require.NoError(t, err)
	assert.Nil(t, skip)
	assert.Zero(t, repo.room.SkipCount)
}

func TestListAvailableItemsAndCompletion(t *testing.T) {
	repo := draftingRoom(1, "A", "B")
	cat := catalogOf(3)
	app := NewApp(repo, cat, clockwork.NewFakeClockAt(t0))
	ctx := context.Background()

	_, err := app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "A", ItemID: cat.items[1].ID})
	require.NoError(t, err)

	items, err := app.ListAvailableItems(ctx, "QWE234")
	require.NoError(t, err)
	assert.Equal(t, []models.Item{cat.items[0], cat.items[2]}, items)

	done, err := app.IsDraftComplete(ctx, "QWE234")
	require.NoError(t, err)
	assert.False(t, done)

	_, err = app.MakePick(ctx, MakePickRequest{RoomCode: "QWE234", ParticipantID: "B", ItemID: cat.items[0].ID})
	require.NoError(t, err)
	done, err = app.IsDraftComplete(ctx, "QWE234")
	require.NoError(t, err)
	assert.True(t, done)

	_, err = app.ListAvailableItems(ctx, "NOPE22")
	assert.ErrorIs(t, err, gameerr.ErrRoomNotFound)
}
