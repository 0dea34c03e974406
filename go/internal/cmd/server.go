package main

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/rpc/roomv1"
)

func setupServer(services *Services) *http.Server {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	registerServices(mux, services)
	setupHealthCheck(mux)

	handler := c.Handler(mux)

	return &http.Server{
		Addr:    fmt.Sprintf(":%s", getEnv("PORT", "8080")),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	opts := connect.WithInterceptors(loggingInterceptor())

	roomPath, roomHandler := roomv1.NewRoomServiceHandler(services.Rooms, opts)
	mux.Handle(roomPath, roomHandler)

	draftPath, draftHandler := roomv1.NewDraftServiceHandler(services.Draft, opts)
	mux.Handle(draftPath, draftHandler)

	livePath, liveHandler := roomv1.NewLiveServiceHandler(services.Live, opts)
	mux.Handle(livePath, liveHandler)
}

// loggingInterceptor logs failed calls. Caller mistakes go out at debug so a
// busy room does not flood the log with rejected picks.
func loggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			resp, err := next(ctx, req)
			if err != nil {
				ev := log.Debug()
				switch connect.CodeOf(err) {
				case connect.CodeInternal, connect.CodeUnknown, connect.CodeUnavailable:
					ev = log.Error()
				}
				ev.Err(err).
					Str("procedure", req.Spec().Procedure).
					Str("code", connect.CodeOf(err).String()).
					Msg("rpc failed")
			}
			return resp, err
		}
	}
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
