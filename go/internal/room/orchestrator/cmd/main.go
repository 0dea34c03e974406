package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/gameconfig"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/orchestrator"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/rpc/roomv1"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	serviceURL := getEnv("ROOM_SERVICE_URL", "http://localhost:8080")
	cfg, err := gameconfig.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log.Info().
		Str("room_service_url", serviceURL).
		Dur("poll_interval", cfg.Orchestrator.PollInterval()).
		Int("workers", cfg.Orchestrator.Workers).
		Msg("starting room orchestrator")

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	orch := orchestrator.NewOrchestrator(
		roomv1.NewRoomServiceClient(httpClient, serviceURL),
		roomv1.NewDraftServiceClient(httpClient, serviceURL),
		roomv1.NewLiveServiceClient(httpClient, serviceURL),
		clockwork.NewRealClock(),
		orchestrator.Config{
			PollInterval: cfg.Orchestrator.PollInterval(),
			Workers:      cfg.Orchestrator.Workers,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := orch.Run(ctx); err != nil {
			log.Error().Err(err).Msg("orchestrator failed")
		}
	}()

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		waker, err := orchestrator.NewEventWaker(ctx, natsURL, orch)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to setup event consumer")
		}
		defer waker.Close()

		go func() {
			log.Info().Msg("starting NATS event consumer")
			if err := waker.Run(ctx); err != nil {
				log.Error().Err(err).Msg("NATS event consumer failed")
			}
		}()
	} else {
		log.Warn().Msg("NATS_URL not set, relying on polling only")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         getEnv("HEALTH_ADDR", ":8082"),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health check server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health check server shutdown failed")
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn().Msg("orchestrator did not stop in time")
	}
	log.Info().Msg("room orchestrator shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
