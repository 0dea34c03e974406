package lobby

import (
	"context"

	"connectrpc.com/connect"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameerr"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/view"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/rpc/roomv1"
)

// LobbyApp defines what the service layer needs from the lobby application
type LobbyApp interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.Room, error)
	JoinRoom(ctx context.Context, req JoinRoomRequest) (*models.Participant, error)
	SetReady(ctx context.Context, req SetReadyRequest) error
	StartDraft(ctx context.Context, code, hostID string) ([]string, error)
	ResetRoom(ctx context.Context, code, hostID string) error
	CloseRoom(ctx context.Context, code, hostID string) error
}

// StateReader defines the read models served alongside the lobby operations
type StateReader interface {
	RoomState(ctx context.Context, code, participantID string) (*view.RoomState, error)
	ActiveRooms(ctx context.Context) ([]view.ActiveRoom, error)
}

// Service implements the RoomService connect interface
type Service struct {
	app   LobbyApp
	state StateReader
}

func NewService(app LobbyApp, state StateReader) *Service {
	return &Service{app: app, state: state}
}

var _ roomv1.RoomServiceHandler = (*Service)(nil)

func (s *Service) CreateRoom(ctx context.Context, req *connect.Request[roomv1.CreateRoomRequest]) (*connect.Response[roomv1.CreateRoomResponse], error) {
	room, err := s.app.CreateRoom(ctx, CreateRoomRequest{
		HostID:          req.Msg.HostID,
		TurnDurationSec: req.Msg.TurnDurationSec,
		MaxParticipants: req.Msg.MaxParticipants,
		SnakeDraft:      req.Msg.SnakeDraft,
		PickQuota:       req.Msg.PickQuota,
	})
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.CreateRoomResponse{Room: *room}), nil
}

func (s *Service) JoinRoom(ctx context.Context, req *connect.Request[roomv1.JoinRoomRequest]) (*connect.Response[roomv1.JoinRoomResponse], error) {
	p, err := s.app.JoinRoom(ctx, JoinRoomRequest{
		RoomCode:      req.Msg.RoomCode,
		ParticipantID: req.Msg.ParticipantID,
		DisplayName:   req.Msg.DisplayName,
		Icon:          req.Msg.Icon,
	})
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.JoinRoomResponse{Participant: *p}), nil
}

func (s *Service) SetReady(ctx context.Context, req *connect.Request[roomv1.SetReadyRequest]) (*connect.Response[roomv1.SetReadyResponse], error) {
	err := s.app.SetReady(ctx, SetReadyRequest{
		RoomCode:      req.Msg.RoomCode,
		ParticipantID: req.Msg.ParticipantID,
		Ready:         req.Msg.Ready,
	})
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.SetReadyResponse{}), nil
}

func (s *Service) StartDraft(ctx context.Context, req *connect.Request[roomv1.StartDraftRequest]) (*connect.Response[roomv1.StartDraftResponse], error) {
	order, err := s.app.StartDraft(ctx, req.Msg.RoomCode, req.Msg.HostID)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.StartDraftResponse{Order: order}), nil
}

func (s *Service) ResetRoom(ctx context.Context, req *connect.Request[roomv1.ResetRoomRequest]) (*connect.Response[roomv1.ResetRoomResponse], error) {
	if err := s.app.ResetRoom(ctx, req.Msg.RoomCode, req.Msg.HostID); err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.ResetRoomResponse{}), nil
}

func (s *Service) CloseRoom(ctx context.Context, req *connect.Request[roomv1.CloseRoomRequest]) (*connect.Response[roomv1.CloseRoomResponse], error) {
	if err := s.app.CloseRoom(ctx, req.Msg.RoomCode, req.Msg.HostID); err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.CloseRoomResponse{}), nil
}

func (s *Service) GetRoomState(ctx context.Context, req *connect.Request[roomv1.GetRoomStateRequest]) (*connect.Response[roomv1.GetRoomStateResponse], error) {
	state, err := s.state.RoomState(ctx, NormalizeCode(req.Msg.RoomCode), req.Msg.ParticipantID)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.GetRoomStateResponse{State: *state}), nil
}

func (s *Service) ListActiveRooms(ctx context.Context, _ *connect.Request[roomv1.ListActiveRoomsRequest]) (*connect.Response[roomv1.ListActiveRoomsResponse], error) {
	rooms, err := s.state.ActiveRooms(ctx)
	if err != nil {
		return nil, gameerr.ToConnect(err)
	}
	return connect.NewResponse(&roomv1.ListActiveRoomsResponse{Rooms: rooms}), nil
}
