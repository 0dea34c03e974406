package live

import (
	"context"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/scoreboard"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/view"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/rpc/roomv1"
)

// LiveApp defines what the service layer needs from the live application
type LiveApp interface {
	StartAiring(ctx context.Context, code, hostID string, itemID uuid.UUID) (*models.Room, error)
	RateItem(ctx context.Context, req RateItemRequest) (*Rating, error)
	ExpireAiring(ctx context.Context, code string) (*Expiry, error)
}

// ScoreReader serves the derived live-phase views
type ScoreReader interface {
	Airing(room models.Room) *view.AiringView
	ItemStates(ctx context.Context, code string, itemID *uuid.UUID) ([]models.RoomItemState, error)
	Leaderboard(ctx context.Context, code string) ([]scoreboard.Standing, error)
	Lineup(ctx context.Context, code, participantID string) (*scoreboard.Lineup, error)
}

// Service implements the LiveService connect interface
type Service struct {
	app    LiveApp
	scores ScoreReader
}

func NewService(app LiveApp, scores ScoreReader) *Service {
	return &Service{app: app, scores: scores}
}

var _ roomv1.LiveServiceHandler = (*Service)(nil)

func (s *Service) StartAiring(ctx context.Context, req *connect.Request[roomv1.StartAiringRequest]) (*connect.Response[roomv1.StartAiringResponse], error) {
	room, err := s.app.StartAiring(ctx, req.Msg.RoomCode, req.Msg.HostID, req.Msg.ItemID)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	res := &roomv1.StartAiringResponse{}
	if av := s.scores.Airing(*room); av != nil {
		res.Airing = *av
	}
	return connect.NewResponse(res), nil
}

func (s *Service) RateItem(ctx context.Context, req *connect.Request[roomv1.RateItemRequest]) (*connect.Response[roomv1.RateItemResponse], error) {
	rt, err := s.app.RateItem(ctx, RateItemRequest{
		RoomCode:      req.Msg.RoomCode,
		ParticipantID: req.Msg.ParticipantID,
		ItemID:        req.Msg.ItemID,
		Stars:         req.Msg.Stars,
	})
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.RateItemResponse{
		State:        rt.State,
		WindowClosed: rt.CloseWindow,
	}), nil
}

// ExpireAiring is called by the orchestrator when an airing window runs out.
func (s *Service) ExpireAiring(ctx context.Context, req *connect.Request[roomv1.ExpireAiringRequest]) (*connect.Response[roomv1.ExpireAiringResponse], error) {
	exp, err := s.app.ExpireAiring(ctx, req.Msg.RoomCode)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	if exp == nil {
		return connect.NewResponse(&roomv1.ExpireAiringResponse{}), nil
	}
	return connect.NewResponse(&roomv1.ExpireAiringResponse{
		Closed:         true,
		TimeoutRatings: len(exp.Timeouts),
	}), nil
}

func (s *Service) GetItemStates(ctx context.Context, req *connect.Request[roomv1.GetItemStatesRequest]) (*connect.Response[roomv1.GetItemStatesResponse], error) {
	states, err := s.scores.ItemStates(ctx, req.Msg.RoomCode, req.Msg.ItemID)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.GetItemStatesResponse{States: states}), nil
}

func (s *Service) GetLeaderboard(ctx context.Context, req *connect.Request[roomv1.GetLeaderboardRequest]) (*connect.Response[roomv1.GetLeaderboardResponse], error) {
	standings, err := s.scores.Leaderboard(ctx, req.Msg.RoomCode)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.GetLeaderboardResponse{Standings: standings}), nil
}

func (s *Service) GetLineup(ctx context.Context, req *connect.Request[roomv1.GetLineupRequest]) (*connect.Response[roomv1.GetLineupResponse], error) {
	lineup, err := s.scores.Lineup(ctx, req.Msg.RoomCode, req.Msg.ParticipantID)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.GetLineupResponse{Lineup: *lineup}), nil
}
