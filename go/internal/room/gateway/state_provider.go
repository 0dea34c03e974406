package gateway

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/scoreboard"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/view"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/rpc/roomv1"
)

// StateProvider reads room views from the room services.
type StateProvider interface {
	RoomState(ctx context.Context, code, participantID string) (*view.RoomState, error)
	Leaderboard(ctx context.Context, code string) ([]scoreboard.Standing, error)
	ItemStates(ctx context.Context, code string) ([]models.RoomItemState, error)
}

// RoomStateProvider implements StateProvider using the service clients
type RoomStateProvider struct {
	rooms roomv1.RoomServiceClient
	live  roomv1.LiveServiceClient
}

func NewRoomStateProvider(rooms roomv1.RoomServiceClient, live roomv1.LiveServiceClient) *RoomStateProvider {
	return &RoomStateProvider{rooms: rooms, live: live}
}

func (p *RoomStateProvider) RoomState(ctx context.Context, code, participantID string) (*view.RoomState, error) {
	resp, err := p.rooms.GetRoomState(ctx, connect.NewRequest(&roomv1.GetRoomStateRequest{
		RoomCode:      code,
		ParticipantID: participantID,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to get room state: %w", err)
	}
	return &resp.Msg.State, nil
}

func (p *RoomStateProvider) Leaderboard(ctx context.Context, code string) ([]scoreboard.Standing, error) {
	resp, err := p.live.GetLeaderboard(ctx, connect.NewRequest(&roomv1.GetLeaderboardRequest{RoomCode: code}))
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return resp.Msg.Standings, nil
}

func (p *RoomStateProvider) ItemStates(ctx context.Context, code string) ([]models.RoomItemState, error) {
	resp, err := p.live.GetItemStates(ctx, connect.NewRequest(&roomv1.GetItemStatesRequest{RoomCode: code}))
	if err != nil {
		return nil, fmt.Errorf("failed to get item states: %w", err)
	}
	return resp.Msg.States, nil
}

// Views serves room reads through the cache. Participant-scoped state
// carries a lineup and is never cached.
type Views struct {
	provider StateProvider
	cache    *ViewCache
}

func NewViews(provider StateProvider, cache *ViewCache) *Views {
	return &Views{provider: provider, cache: cache}
}

func (v *Views) CacheStats() CacheStats {
	return v.cache.Stats()
}

func (v *Views) State(ctx context.Context, code, participantID string) (*view.RoomState, error) {
	if participantID != "" {
		return v.provider.RoomState(ctx, code, participantID)
	}
	return Cached(ctx, v.cache, code, EntityState, func(ctx context.Context) (*view.RoomState, error) {
		return v.provider.RoomState(ctx, code, "")
	})
}

func (v *Views) Leaderboard(ctx context.Context, code string) ([]scoreboard.Standing, error) {
	return Cached(ctx, v.cache, code, EntityLeaderboard, func(ctx context.Context) ([]scoreboard.Standing, error) {
		return v.provider.Leaderboard(ctx, code)
	})
}

func (v *Views) ItemStates(ctx context.Context, code string) ([]models.RoomItemState, error) {
	return Cached(ctx, v.cache, code, EntityItemStates, func(ctx context.Context) ([]models.RoomItemState, error) {
		return v.provider.ItemStates(ctx, code)
	})
}
