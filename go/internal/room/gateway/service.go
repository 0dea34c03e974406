// Package gateway pushes room changes to browsers. It consumes the room event
// stream, invalidates its view cache and broadcasts fresh snapshots over
// websockets; the same cached views back a small REST API.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig
	CacheTTL         time.Duration
}

func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
		CacheTTL:         30 * time.Second,
	}
}

// Service is the room gateway: sockets, cache, consumer and routes.
type Service struct {
	connectionManager *ConnectionManager
	eventConsumer     *EventConsumer
	handlers          *Handlers
}

func NewService(ctx context.Context, config Config, provider StateProvider, clock clockwork.Clock) (*Service, error) {
	cm := NewConnectionManager(config.ConnectionConfig)
	cache := NewViewCache(clock, config.CacheTTL)
	views := NewViews(provider, cache)

	consumer, err := NewEventConsumer(ctx, NewEventHandler(cm, views, cache, clock), config.JetStreamConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}

	return &Service{
		connectionManager: cm,
		eventConsumer:     consumer,
		handlers:          NewHandlers(cm, views, clock),
	}, nil
}

// Start runs the broadcaster and the consumer until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting room gateway service")

	go s.connectionManager.Start(ctx)

	go func() {
		if err := s.eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("room gateway service shutting down")
	return s.eventConsumer.Stop()
}

func (s *Service) Handler() http.Handler {
	return s.handlers.Router()
}
