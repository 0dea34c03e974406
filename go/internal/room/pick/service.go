package pick

import (
	"context"

	"connectrpc.com/connect"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/view"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/rpc/roomv1"
)

// PickApp defines what the service layer needs from the pick application
type PickApp interface {
	MakePick(ctx context.Context, req MakePickRequest) (*Claim, error)
	SkipTurn(ctx context.Context, code string, expectedTurn int) (*Skip, error)
	ListPicks(ctx context.Context, code string) ([]models.Pick, error)
	ListAvailableItems(ctx context.Context, code string) ([]models.Item, error)
	IsDraftComplete(ctx context.Context, code string) (bool, error)
}

// TurnReader serves the draft clock
type TurnReader interface {
	Turn(ctx context.Context, code string) (*view.TurnView, error)
}

// Service implements the DraftService connect interface
type Service struct {
	app   PickApp
	turns TurnReader
}

func NewService(app PickApp, turns TurnReader) *Service {
	return &Service{app: app, turns: turns}
}

var _ roomv1.DraftServiceHandler = (*Service)(nil)

func (s *Service) MakePick(ctx context.Context, req *connect.Request[roomv1.MakePickRequest]) (*connect.Response[roomv1.MakePickResponse], error) {
	claim, err := s.app.MakePick(ctx, MakePickRequest{
		RoomCode:      req.Msg.RoomCode,
		ParticipantID: req.Msg.ParticipantID,
		ItemID:        req.Msg.ItemID,
		ExpectedTurn:  req.Msg.ExpectedTurn,
	})
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.MakePickResponse{
		Pick:          claim.Pick,
		DraftComplete: claim.Complete,
	}), nil
}

// SkipTurn is called by the orchestrator when a turn clock runs out.
func (s *Service) SkipTurn(ctx context.Context, req *connect.Request[roomv1.SkipTurnRequest]) (*connect.Response[roomv1.SkipTurnResponse], error) {
	skip, err := s.app.SkipTurn(ctx, req.Msg.RoomCode, req.Msg.ExpectedTurn)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	if skip == nil {
		complete, err := s.app.IsDraftComplete(ctx, req.Msg.RoomCode)
		if err != nil {
			return nil, gameerr.ToConnect(err)
		}
		return connect.NewResponse(&roomv1.SkipTurnResponse{DraftComplete: complete}), nil
	}
	return connect.NewResponse(&roomv1.SkipTurnResponse{
		Skipped:       true,
		ParticipantID: skip.ParticipantID,
	}), nil
}

func (s *Service) GetTurn(ctx context.Context, req *connect.Request[roomv1.GetTurnRequest]) (*connect.Response[roomv1.GetTurnResponse], error) {
	tv, err := s.turns.Turn(ctx, req.Msg.RoomCode)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.GetTurnResponse{Turn: *tv}), nil
}

func (s *Service) ListPicks(ctx context.Context, req *connect.Request[roomv1.ListPicksRequest]) (*connect.Response[roomv1.ListPicksResponse], error) {
	picks, err := s.app.ListPicks(ctx, req.Msg.RoomCode)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.ListPicksResponse{Picks: picks}), nil
}

func (s *Service) ListAvailableItems(ctx context.Context, req *connect.Request[roomv1.ListAvailableItemsRequest]) (*connect.Response[roomv1.ListAvailableItemsResponse], error) {
	items, err := s.app.ListAvailableItems(ctx, req.Msg.RoomCode)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.ListAvailableItemsResponse{Items: items}), nil
}
