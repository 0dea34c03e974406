package roomv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// RoomServiceName is the fully-qualified name of the RoomService service.
const RoomServiceName = "commercialdraft.room.v1.RoomService"

const (
	RoomServiceCreateRoomProcedure      = "/" + RoomServiceName + "/CreateRoom"
	RoomServiceJoinRoomProcedure        = "/" + RoomServiceName + "/JoinRoom"
	RoomServiceSetReadyProcedure        = "/" + RoomServiceName + "/SetReady"
	RoomServiceStartDraftProcedure      = "/" + RoomServiceName + "/StartDraft"
	RoomServiceResetRoomProcedure       = "/" + RoomServiceName + "/ResetRoom"
	RoomServiceCloseRoomProcedure       = "/" + RoomServiceName + "/CloseRoom"
	RoomServiceGetRoomStateProcedure    = "/" + RoomServiceName + "/GetRoomState"
	RoomServiceListActiveRoomsProcedure = "/" + RoomServiceName + "/ListActiveRooms"
)

// RoomServiceHandler is implemented by the server side of RoomService.
type RoomServiceHandler interface {
	CreateRoom(context.Context, *connect.Request[CreateRoomRequest]) (*connect.Response[CreateRoomResponse], error)
	JoinRoom(context.Context, *connect.Request[JoinRoomRequest]) (*connect.Response[JoinRoomResponse], error)
	SetReady(context.Context, *connect.Request[SetReadyRequest]) (*connect.Response[SetReadyResponse], error)
	StartDraft(context.Context, *connect.Request[StartDraftRequest]) (*connect.Response[StartDraftResponse], error)
	ResetRoom(context.Context, *connect.Request[ResetRoomRequest]) (*connect.Response[ResetRoomResponse], error)
	CloseRoom(context.Context, *connect.Request[CloseRoomRequest]) (*connect.Response[CloseRoomResponse], error)
	GetRoomState(context.Context, *connect.Request[GetRoomStateRequest]) (*connect.Response[GetRoomStateResponse], error)
	ListActiveRooms(context.Context, *connect.Request[ListActiveRoomsRequest]) (*connect.Response[ListActiveRoomsResponse], error)
}

// NewRoomServiceHandler builds an HTTP handler for every RoomService procedure and
// returns the path prefix to mount it on.
func NewRoomServiceHandler(svc RoomServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(RoomServiceCreateRoomProcedure, connect.NewUnaryHandler(RoomServiceCreateRoomProcedure, svc.CreateRoom, opts...))
	mux.Handle(RoomServiceJoinRoomProcedure, connect.NewUnaryHandler(RoomServiceJoinRoomProcedure, svc.JoinRoom, opts...))
	mux.Handle(RoomServiceSetReadyProcedure, connect.NewUnaryHandler(RoomServiceSetReadyProcedure, svc.SetReady, opts...))
	mux.Handle(RoomServiceStartDraftProcedure, connect.NewUnaryHandler(RoomServiceStartDraftProcedure, svc.StartDraft, opts...))
	mux.Handle(RoomServiceResetRoomProcedure, connect.NewUnaryHandler(RoomServiceResetRoomProcedure, svc.ResetRoom, opts...))
	mux.Handle(RoomServiceCloseRoomProcedure, connect.NewUnaryHandler(RoomServiceCloseRoomProcedure, svc.CloseRoom, opts...))
	mux.Handle(RoomServiceGetRoomStateProcedure, connect.NewUnaryHandler(RoomServiceGetRoomStateProcedure, svc.GetRoomState, opts...))
	mux.Handle(RoomServiceListActiveRoomsProcedure, connect.NewUnaryHandler(RoomServiceListActiveRoomsProcedure, svc.ListActiveRooms, opts...))
	return "/" + RoomServiceName + "/", mux
}

// RoomServiceClient calls RoomService over connect.
type RoomServiceClient interface {
	CreateRoom(context.Context, *connect.Request[CreateRoomRequest]) (*connect.Response[CreateRoomResponse], error)
	JoinRoom(context.Context, *connect.Request[JoinRoomRequest]) (*connect.Response[JoinRoomResponse], error)
	SetReady(context.Context, *connect.Request[SetReadyRequest]) (*connect.Response[SetReadyResponse], error)
	StartDraft(context.Context, *connect.Request[StartDraftRequest]) (*connect.Response[StartDraftResponse], error)
	ResetRoom(context.Context, *connect.Request[ResetRoomRequest]) (*connect.Response[ResetRoomResponse], error)
	CloseRoom(context.Context, *connect.Request[CloseRoomRequest]) (*connect.Response[CloseRoomResponse], error)
	GetRoomState(context.Context, *connect.Request[GetRoomStateRequest]) (*connect.Response[GetRoomStateResponse], error)
	ListActiveRooms(context.Context, *connect.Request[ListActiveRoomsRequest]) (*connect.Response[ListActiveRoomsResponse], error)
}

func NewRoomServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RoomServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &roomServiceClient{
		createRoom:      connect.NewClient[CreateRoomRequest, CreateRoomResponse](httpClient, baseURL+RoomServiceCreateRoomProcedure, opts...),
		joinRoom:        connect.NewClient[JoinRoomRequest, JoinRoomResponse](httpClient, baseURL+RoomServiceJoinRoomProcedure, opts...),
		setReady:        connect.NewClient[SetReadyRequest, SetReadyResponse](httpClient, baseURL+RoomServiceSetReadyProcedure, opts...),
		startDraft:      connect.NewClient[StartDraftRequest, StartDraftResponse](httpClient, baseURL+RoomServiceStartDraftProcedure, opts...),
		resetRoom:       connect.NewClient[ResetRoomRequest, ResetRoomResponse](httpClient, baseURL+RoomServiceResetRoomProcedure, opts...),
		closeRoom:       connect.NewClient[CloseRoomRequest, CloseRoomResponse](httpClient, baseURL+RoomServiceCloseRoomProcedure, opts...),
		getRoomState:    connect.NewClient[GetRoomStateRequest, GetRoomStateResponse](httpClient, baseURL+RoomServiceGetRoomStateProcedure, opts...),
		listActiveRooms: connect.NewClient[ListActiveRoomsRequest, ListActiveRoomsResponse](httpClient, baseURL+RoomServiceListActiveRoomsProcedure, opts...),
	}
}

type roomServiceClient struct {
	createRoom      *connect.Client[CreateRoomRequest, CreateRoomResponse]
	joinRoom        *connect.Client[JoinRoomRequest, JoinRoomResponse]
	setReady        *connect.Client[SetReadyRequest, SetReadyResponse]
	startDraft      *connect.Client[StartDraftRequest, StartDraftResponse]
	resetRoom       *connect.Client[ResetRoomRequest, ResetRoomResponse]
	closeRoom       *connect.Client[CloseRoomRequest, CloseRoomResponse]
	getRoomState    *connect.Client[GetRoomStateRequest, GetRoomStateResponse]
	listActiveRooms *connect.Client[ListActiveRoomsRequest, ListActiveRoomsResponse]
}

func (c *roomServiceClient) CreateRoom(ctx context.Context, req *connect.Request[CreateRoomRequest]) (*connect.Response[CreateRoomResponse], error) {
	return c.createRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) JoinRoom(ctx context.Context, req *connect.Request[JoinRoomRequest]) (*connect.Response[JoinRoomResponse], error) {
	return c.joinRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) SetReady(ctx context.Context, req *connect.Request[SetReadyRequest]) (*connect.Response[SetReadyResponse], error) {
	return c.setReady.CallUnary(ctx, req)
}

func (c *roomServiceClient) StartDraft(ctx context.Context, req *connect.Request[StartDraftRequest]) (*connect.Response[StartDraftResponse], error) {
	return c.startDraft.CallUnary(ctx, req)
}

func (c *roomServiceClient) ResetRoom(ctx context.Context, req *connect.Request[ResetRoomRequest]) (*connect.Response[ResetRoomResponse], error) {
	return c.resetRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) CloseRoom(ctx context.Context, req *connect.Request[CloseRoomRequest]) (*connect.Response[CloseRoomResponse], error) {
	return c.closeRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) GetRoomState(ctx context.Context, req *connect.Request[GetRoomStateRequest]) (*connect.Response[GetRoomStateResponse], error) {
	return c.getRoomState.CallUnary(ctx, req)
}

func (c *roomServiceClient) ListActiveRooms(ctx context.Context, req *connect.Request[ListActiveRoomsRequest]) (*connect.Response[ListActiveRoomsResponse], error) {
	return c.listActiveRooms.CallUnary(ctx, req)
}
