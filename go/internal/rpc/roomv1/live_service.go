package roomv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// LiveServiceName is the fully-qualified name of the LiveService service.
const LiveServiceName = "commercialdraft.room.v1.LiveService"

const (
	LiveServiceStartAiringProcedure    = "/" + LiveServiceName + "/StartAiring"
	LiveServiceRateItemProcedure       = "/" + LiveServiceName + "/RateItem"
	LiveServiceExpireAiringProcedure   = "/" + LiveServiceName + "/ExpireAiring"
	LiveServiceGetItemStatesProcedure  = "/" + LiveServiceName + "/GetItemStates"
	LiveServiceGetLeaderboardProcedure = "/" + LiveServiceName + "/GetLeaderboard"
	LiveServiceGetLineupProcedure      = "/" + LiveServiceName + "/GetLineup"
)

// LiveServiceHandler is implemented by the server side of LiveService.
type LiveServiceHandler interface {
	StartAiring(context.Context, *connect.Request[StartAiringRequest]) (*connect.Response[StartAiringResponse], error)
	RateItem(context.Context, *connect.Request[RateItemRequest]) (*connect.Response[RateItemResponse], error)
	ExpireAiring(context.Context, *connect.Request[ExpireAiringRequest]) (*connect.Response[ExpireAiringResponse], error)
	GetItemStates(context.Context, *connect.Request[GetItemStatesRequest]) (*connect.Response[GetItemStatesResponse], error)
	GetLeaderboard(context.Context, *connect.Request[GetLeaderboardRequest]) (*connect.Response[GetLeaderboardResponse], error)
	GetLineup(context.Context, *connect.Request[GetLineupRequest]) (*connect.Response[GetLineupResponse], error)
}

// NewLiveServiceHandler builds an HTTP handler for every LiveService procedure and
// returns the path prefix to mount it on.
func NewLiveServiceHandler(svc LiveServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LiveServiceStartAiringProcedure, connect.NewUnaryHandler(LiveServiceStartAiringProcedure, svc.StartAiring, opts...))
	mux.Handle(LiveServiceRateItemProcedure, connect.NewUnaryHandler(LiveServiceRateItemProcedure, svc.RateItem, opts...))
	mux.Handle(LiveServiceExpireAiringProcedure, connect.NewUnaryHandler(LiveServiceExpireAiringProcedure, svc.ExpireAiring, opts...))
	mux.Handle(LiveServiceGetItemStatesProcedure, connect.NewUnaryHandler(LiveServiceGetItemStatesProcedure, svc.GetItemStates, opts...))
	mux.Handle(LiveServiceGetLeaderboardProcedure, connect.NewUnaryHandler(LiveServiceGetLeaderboardProcedure, svc.GetLeaderboard, opts...))
	mux.Handle(LiveServiceGetLineupProcedure, connect.NewUnaryHandler(LiveServiceGetLineupProcedure, svc.GetLineup, opts...))
	return "/" + LiveServiceName + "/", mux
}

// LiveServiceClient calls LiveService over connect.
type LiveServiceClient interface {
	StartAiring(context.Context, *connect.Request[StartAiringRequest]) (*connect.Response[StartAiringResponse], error)
	RateItem(context.Context, *connect.Request[RateItemRequest]) (*connect.Response[RateItemResponse], error)
	ExpireAiring(context.Context, *connect.Request[ExpireAiringRequest]) (*connect.Response[ExpireAiringResponse], error)
	GetItemStates(context.Context, *connect.Request[GetItemStatesRequest]) (*connect.Response[GetItemStatesResponse], error)
	GetLeaderboard(context.Context, *connect.Request[GetLeaderboardRequest]) (*connect.Response[GetLeaderboardResponse], error)
	GetLineup(context.Context, *connect.Request[GetLineupRequest]) (*connect.Response[GetLineupResponse], error)
}

func NewLiveServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LiveServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &liveServiceClient{
		startAiring:    connect.NewClient[StartAiringRequest, StartAiringResponse](httpClient, baseURL+LiveServiceStartAiringProcedure, opts...),
		rateItem:       connect.NewClient[RateItemRequest, RateItemResponse](httpClient, baseURL+LiveServiceRateItemProcedure, opts...),
		expireAiring:   connect.NewClient[ExpireAiringRequest, ExpireAiringResponse](httpClient, baseURL+LiveServiceExpireAiringProcedure, opts...),
		getItemStates:  connect.NewClient[GetItemStatesRequest, GetItemStatesResponse](httpClient, baseURL+LiveServiceGetItemStatesProcedure, opts...),
		getLeaderboard: connect.NewClient[GetLeaderboardRequest, GetLeaderboardResponse](httpClient, baseURL+LiveServiceGetLeaderboardProcedure, opts...),
		getLineup:      connect.NewClient[GetLineupRequest, GetLineupResponse](httpClient, baseURL+LiveServiceGetLineupProcedure, opts...),
	}
}

type liveServiceClient struct {
	startAiring    *connect.Client[StartAiringRequest, StartAiringResponse]
	rateItem       *connect.Client[RateItemRequest, RateItemResponse]
	expireAiring   *connect.Client[ExpireAiringRequest, ExpireAiringResponse]
	getItemStates  *connect.Client[GetItemStatesRequest, GetItemStatesResponse]
	getLeaderboard *connect.Client[GetLeaderboardRequest, GetLeaderboardResponse]
	getLineup      *connect.Client[GetLineupRequest, GetLineupResponse]
}

func (c *liveServiceClient) StartAiring(ctx context.Context, req *connect.Request[StartAiringRequest]) (*connect.Response[StartAiringResponse], error) {
	return c.startAiring.CallUnary(ctx, req)
}

func (c *liveServiceClient) RateItem(ctx context.Context, req *connect.Request[RateItemRequest]) (*connect.Response[RateItemResponse], error) {
	return c.rateItem.CallUnary(ctx, req)
}

func (c *liveServiceClient) ExpireAiring(ctx context.Context, req *connect.Request[ExpireAiringRequest]) (*connect.Response[ExpireAiringResponse], error) {
	return c.expireAiring.CallUnary(ctx, req)
}

func (c *liveServiceClient) GetItemStates(ctx context.Context, req *connect.Request[GetItemStatesRequest]) (*connect.Response[GetItemStatesResponse], error) {
	return c.getItemStates.CallUnary(ctx, req)
}

func (c *liveServiceClient) GetLeaderboard(ctx context.Context, req *connect.Request[GetLeaderboardRequest]) (*connect.Response[GetLeaderboardResponse], error) {
	return c.getLeaderboard.CallUnary(ctx, req)
}

func (c *liveServiceClient) GetLineup(ctx context.Context, req *connect.Request[GetLineupRequest]) (*connect.Response[GetLineupResponse], error) {
	return c.getLineup.CallUnary(ctx, req)
}
