package outbox

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to poll for missed events
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int           // Max events to fetch per batch
	Retention        time.Duration // How long sent rows are kept
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel:    "room_outbox_events",
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
		Retention:        24 * time.Hour,
	}
}

type Listener struct {
	repo     *Repository
	relay    *Relay
	listener *pq.Listener
	cfg      ListenerConfig
	running  atomic.Bool
}

func NewListener(repo *Repository, publisher Publisher, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for notifications")

	return &Listener{
		repo:     repo,
		relay:    NewRelay(repo, publisher, cfg.MaxRetries, cfg.RetryDelay),
		listener: l,
		cfg:      cfg,
	}, nil
}

func (l *Listener) Start(ctx context.Context) error {
	log.Info().
		Str("channel", l.cfg.NotifyChannel).
		Dur("ping_interval", l.cfg.PingInterval).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("listener started")

	l.running.Store(true)
	defer l.running.Store(false)

	// rows written while the relay was down
	l.sweep(ctx)

	pingTicker := time.NewTicker(l.cfg.PingInterval)
	fallbackTicker := time.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("listener shutting down")
			return l.Stop()
		case note := <-l.listener.Notify:
			if note == nil {
				// connection was re-established; notifications may have been missed
				l.sweep(ctx)
				continue
			}
			id, err := uuid.Parse(note.Extra)
			if err != nil {
				log.Error().Err(err).Str("extra", note.Extra).Msg("invalid event ID in notification")
				continue
			}
			if err := l.relay.RelayByID(ctx, id); err != nil {
				log.Error().Err(err).Str("event_id", id.String()).Msg("failed to handle notification")
			}
		case <-fallbackTicker.C:
			l.sweep(ctx)
			if n, err := l.repo.PurgeSent(ctx, time.Now().Add(-l.cfg.Retention)); err != nil {
				log.Error().Err(err).Msg("failed to purge sent events")
			} else if n > 0 {
				log.Debug().Int64("purged", n).Msg("purged sent outbox events")
			}
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

func (l *Listener) sweep(ctx context.Context) {
	n, err := l.relay.RelayUnsent(ctx, l.cfg.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to process unsent events")
		return
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("relayed unsent outbox events")
	}
}

// Stats reports relay progress for health checks.
func (l *Listener) Stats() (uint64, time.Time) {
	return l.relay.Stats()
}

// Active reports whether Start is running.
func (l *Listener) Active() bool {
	return l.running.Load()
}

func (l *Listener) Stop() error {
	return l.listener.Close()
}
