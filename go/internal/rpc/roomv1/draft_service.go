package roomv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// DraftServiceName is the fully-qualified name of the DraftService service.
const DraftServiceName = "commercialdraft.room.v1.DraftService"

const (
	DraftServiceMakePickProcedure           = "/" + DraftServiceName + "/MakePick"
	DraftServiceSkipTurnProcedure           = "/" + DraftServiceName + "/SkipTurn"
	DraftServiceGetTurnProcedure            = "/" + DraftServiceName + "/GetTurn"
	DraftServiceListPicksProcedure          = "/" + DraftServiceName + "/ListPicks"
	DraftServiceListAvailableItemsProcedure = "/" + DraftServiceName + "/ListAvailableItems"
)

// DraftServiceHandler is implemented by the server side of DraftService.
type DraftServiceHandler interface {
	MakePick(context.Context, *connect.Request[MakePickRequest]) (*connect.Response[MakePickResponse], error)
	SkipTurn(context.Context, *connect.Request[SkipTurnRequest]) (*connect.Response[SkipTurnResponse], error)
	GetTurn(context.Context, *connect.Request[GetTurnRequest]) (*connect.Response[GetTurnResponse], error)
	ListPicks(context.Context, *connect.Request[ListPicksRequest]) (*connect.Response[ListPicksResponse], error)
	ListAvailableItems(context.Context, *connect.Request[ListAvailableItemsRequest]) (*connect.Response[ListAvailableItemsResponse], error)
}

// NewDraftServiceHandler builds an HTTP handler for every DraftService procedure and
// returns the path prefix to mount it on.
func NewDraftServiceHandler(svc DraftServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(DraftServiceMakePickProcedure, connect.NewUnaryHandler(DraftServiceMakePickProcedure, svc.MakePick, opts...))
	mux.Handle(DraftServiceSkipTurnProcedure, connect.NewUnaryHandler(DraftServiceSkipTurnProcedure, svc.SkipTurn, opts...))
	mux.Handle(DraftServiceGetTurnProcedure, connect.NewUnaryHandler(DraftServiceGetTurnProcedure, svc.GetTurn, opts...))
	mux.Handle(DraftServiceListPicksProcedure, connect.NewUnaryHandler(DraftServiceListPicksProcedure, svc.ListPicks, opts...))
	mux.Handle(DraftServiceListAvailableItemsProcedure, connect.NewUnaryHandler(DraftServiceListAvailableItemsProcedure, svc.ListAvailableItems, opts...))
	return "/" + DraftServiceName + "/", mux
}

// DraftServiceClient calls DraftService over connect.
type DraftServiceClient interface {
	MakePick(context.Context, *connect.Request[MakePickRequest]) (*connect.Response[MakePickResponse], error)
	SkipTurn(context.Context, *connect.Request[SkipTurnRequest]) (*connect.Response[SkipTurnResponse], error)
	GetTurn(context.Context, *connect.Request[GetTurnRequest]) (*connect.Response[GetTurnResponse], error)
	ListPicks(context.Context, *connect.Request[ListPicksRequest]) (*connect.Response[ListPicksResponse], error)
	ListAvailableItems(context.Context, *connect.Request[ListAvailableItemsRequest]) (*connect.Response[ListAvailableItemsResponse], error)
}

func NewDraftServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DraftServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &draftServiceClient{
		makePick:           connect.NewClient[MakePickRequest, MakePickResponse](httpClient, baseURL+DraftServiceMakePickProcedure, opts...),
		skipTurn:           connect.NewClient[SkipTurnRequest, SkipTurnResponse](httpClient, baseURL+DraftServiceSkipTurnProcedure, opts...),
		getTurn:            connect.NewClient[GetTurnRequest, GetTurnResponse](httpClient, baseURL+DraftServiceGetTurnProcedure, opts...),
		listPicks:          connect.NewClient[ListPicksRequest, ListPicksResponse](httpClient, baseURL+DraftServiceListPicksProcedure, opts...),
		listAvailableItems: connect.NewClient[ListAvailableItemsRequest, ListAvailableItemsResponse](httpClient, baseURL+DraftServiceListAvailableItemsProcedure, opts...),
	}
}

type draftServiceClient struct {
	makePick           *connect.Client[MakePickRequest, MakePickResponse]
	skipTurn           *connect.Client[SkipTurnRequest, SkipTurnResponse]
	getTurn            *connect.Client[GetTurnRequest, GetTurnResponse]
	listPicks          *connect.Client[ListPicksRequest, ListPicksResponse]
	listAvailableItems *connect.Client[ListAvailableItemsRequest, ListAvailableItemsResponse]
}

func (c *draftServiceClient) MakePick(ctx context.Context, req *connect.Request[MakePickRequest]) (*connect.Response[MakePickResponse], error) {
	return c.makePick.CallUnary(ctx, req)
}

func (c *draftServiceClient) SkipTurn(ctx context.Context, req *connect.Request[SkipTurnRequest]) (*connect.Response[SkipTurnResponse], error) {
	return c.skipTurn.CallUnary(ctx, req)
}

func (c *draftServiceClient) GetTurn(ctx context.Context, req *connect.Request[GetTurnRequest]) (*connect.Response[GetTurnResponse], error) {
	return c.getTurn.CallUnary(ctx, req)
}

func (c *draftServiceClient) ListPicks(ctx context.Context, req *connect.Request[ListPicksRequest]) (*connect.Response[ListPicksResponse], error) {
	return c.listPicks.CallUnary(ctx, req)
}

func (c *draftServiceClient) ListAvailableItems(ctx context.Context, req *connect.Request[ListAvailableItemsRequest]) (*connect.Response[ListAvailableItemsResponse], error) {
	return c.listAvailableItems.CallUnary(ctx, req)
}
