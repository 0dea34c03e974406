package gateway

import (
	"context"
	"errors"
	"sync"

	"connectrpc.com/connect"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/scoreboard"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/view"
)

// fakeProvider serves rooms from a map and counts loads per entity.
type fakeProvider struct {
	mu     sync.Mutex
	rooms  map[string]models.RoomStatus
	calls  map[Entity]int
	scores map[string]int
}

func newFakeProvider(codes ...string) *fakeProvider {
	p := &fakeProvider{
		rooms:  make(map[string]models.RoomStatus),
		calls:  make(map[Entity]int),
		scores: make(map[string]int),
	}
	for _, c := range codes {
		p.rooms[c] = models.RoomStatusLobby
	}
	return p
}

var errNoRoom = connect.NewError(connect.CodeNotFound, errors.New("room not found"))

func (p *fakeProvider) setStatus(code string, s models.RoomStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rooms[code] = s
}

func (p *fakeProvider) remove(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.rooms, code)
}

func (p *fakeProvider) count(e Entity) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[e]
}

func (p *fakeProvider) RoomState(ctx context.Context, code, participantID string) (*view.RoomState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[EntityState]++
	status, ok := p.rooms[code]
	if !ok {
		return nil, errNoRoom
	}
	state := &view.RoomState{Room: models.Room{Code: code, Status: status}}
	if participantID != "" {
		state.Lineup = &scoreboard.Lineup{ParticipantID: participantID}
	}
	return state, nil
}

func (p *fakeProvider) Leaderboard(ctx context.Context, code string) ([]scoreboard.Standing, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[EntityLeaderboard]++
	if _, ok := p.rooms[code]; !ok {
		return nil, errNoRoom
	}
	return []scoreboard.Standing{{ParticipantID: "p1", Score: p.scores[code], Rank: 1}}, nil
}

func (p *fakeProvider) ItemStates(ctx context.Context, code string) ([]models.RoomItemState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[EntityItemStates]++
	if _, ok := p.rooms[code]; !ok {
		return nil, errNoRoom
	}
	return []models.RoomItemState{}, nil
}
