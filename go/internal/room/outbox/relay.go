package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store is what the relay needs from the outbox table.
type Store interface {
	FetchUnsent(ctx context.Context, limit int) ([]OutboxEvent, error)
	FetchByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// Relay moves outbox rows onto the bus. An event is marked sent only after
// the publisher acknowledged it, so delivery is at-least-once.
type Relay struct {
	store      Store
	publisher  Publisher
	maxRetries int
	retryDelay time.Duration

	mu       sync.Mutex
	sent     uint64
	lastSent time.Time
}

func NewRelay(store Store, publisher Publisher, maxRetries int, retryDelay time.Duration) *Relay {
	return &Relay{store: store, publisher: publisher, maxRetries: maxRetries, retryDelay: retryDelay}
}

// RelayByID publishes a single event named by a notification.
func (r *Relay) RelayByID(ctx context.Context, id uuid.UUID) error {
	event, err := r.store.FetchByID(ctx, id)
	if errors.Is(err, ErrEventNotFound) {
		// already relayed by the fallback sweep
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	return r.relay(ctx, *event)
}

// RelayUnsent sweeps up to limit unsent events. Failures are logged and left
// for the next sweep.
func (r *Relay) RelayUnsent(ctx context.Context, limit int) (int, error) {
	unsent, err := r.store.FetchUnsent(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}

	sent := 0
	for _, event := range unsent {
		if err := r.relay(ctx, event); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to relay outbox event")
			continue
		}
		sent++
	}
	return sent, nil
}

func (r *Relay) relay(ctx context.Context, event OutboxEvent) error {
	if err := r.publishWithRetry(ctx, event); err != nil {
		return err
	}
	if err := r.store.MarkSent(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark outbox event %s as sent: %w", event.ID, err)
	}
	r.mu.Lock()
	r.sent++
	r.lastSent = time.Now()
	r.mu.Unlock()
	log.Debug().
		Str("event_id", event.ID.String()).
		Str("room_code", event.RoomCode).
		Str("event_type", event.EventType).
		Msg("published and marked event as sent")
	return nil
}

// Stats returns how many events were relayed and when the last one was.
func (r *Relay) Stats() (uint64, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent, r.lastSent
}

// publishWithRetry backs off linearly between attempts.
func (r *Relay) publishWithRetry(ctx context.Context, event OutboxEvent) error {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.retryDelay * time.Duration(attempt)):
			}
		}

		if err := r.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.maxRetries+1, lastErr)
}
