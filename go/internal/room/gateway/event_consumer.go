package gateway

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/outbox"
)

type JetStreamConsumerConfig struct {
	URL               string
	StreamName        string
	ConsumerName      string
	SubjectFilter     string
	MaxDeliver        int
	AckWait           time.Duration
	MaxAckPending     int
	InactiveThreshold time.Duration
	MaxReconnects     int
	ReconnectWait     time.Duration
}

// DefaultJetStreamConsumerConfig returns the consumer settings. Every gateway
// instance needs every event, so callers give each one its own ConsumerName.
func DefaultJetStreamConsumerConfig() JetStreamConsumerConfig {
	return JetStreamConsumerConfig{
		URL:               nats.DefaultURL,
		StreamName:        outbox.DefaultJetStreamConfig().StreamName,
		ConsumerName:      "room-gateway",
		SubjectFilter:     events.SubjectPrefix + ">",
		MaxDeliver:        5,
		AckWait:           30 * time.Second,
		MaxAckPending:     100,
		InactiveThreshold: 10 * time.Minute,
		MaxReconnects:     -1,
		ReconnectWait:     2 * time.Second,
	}
}

// EventHandler turns room notifications into cache invalidations and
// broadcasts.
type EventHandler struct {
	cm    *ConnectionManager
	views *Views
	cache *ViewCache
	clock clockwork.Clock
}

func NewEventHandler(cm *ConnectionManager, views *Views, cache *ViewCache, clock clockwork.Clock) *EventHandler {
	return &EventHandler{cm: cm, views: views, cache: cache, clock: clock}
}

// Apply handles one notification. An error means it should be redelivered.
func (h *EventHandler) Apply(ctx context.Context, n Notification) error {
	msg := &Message{
		ID:        n.ID,
		RoomCode:  n.RoomCode,
		Type:      n.Type,
		Timestamp: h.clock.Now(),
		Data:      n.Data,
	}

	if n.Type == events.RoomClosed {
		h.cache.Drop(n.RoomCode)
		h.cm.CloseRoom(n.RoomCode, msg)
		return nil
	}

	h.cache.Invalidate(n.RoomCode, n.Type)
	if !h.cm.HasRoom(n.RoomCode) {
		return nil
	}

	state, err := h.views.State(ctx, n.RoomCode, "")
	if connect.CodeOf(err) == connect.CodeNotFound {
		// closed after this event was written
		h.cache.Drop(n.RoomCode)
		h.cm.CloseRoom(n.RoomCode, msg)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to refresh room %s: %w", n.RoomCode, err)
	}

	msg.State = state
	h.cm.BroadcastToRoom(n.RoomCode, msg)
	return nil
}

// EventConsumer consumes events from JetStream and hands them to an EventHandler
type EventConsumer struct {
	handler  *EventHandler
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	config   JetStreamConsumerConfig
}

func NewEventConsumer(ctx context.Context, handler *EventHandler, config JetStreamConsumerConfig) (*EventConsumer, error) {
	opts := []nats.Option{
		nats.Name(config.ConsumerName),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ec := &EventConsumer{handler: handler, nc: nc, js: js, config: config}
	if err := ec.ensureConsumer(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure consumer: %w", err)
	}
	return ec, nil
}

func (ec *EventConsumer) ensureConsumer(ctx context.Context) error {
	jsCfg := outbox.DefaultJetStreamConfig()
	jsCfg.StreamName = ec.config.StreamName
	stream, err := ec.js.CreateOrUpdateStream(ctx, jsCfg.StreamConfig())
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:              ec.config.ConsumerName,
		Durable:           ec.config.ConsumerName,
		Description:       "Room gateway WebSocket consumer",
		FilterSubject:     ec.config.SubjectFilter,
		DeliverPolicy:     jetstream.DeliverNewPolicy,
		AckPolicy:         jetstream.AckExplicitPolicy,
		MaxDeliver:        ec.config.MaxDeliver,
		AckWait:           ec.config.AckWait,
		MaxAckPending:     ec.config.MaxAckPending,
		InactiveThreshold: ec.config.InactiveThreshold,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	log.Info().
		Str("consumer", ec.config.ConsumerName).
		Str("stream", ec.config.StreamName).
		Msg("JetStream consumer ready")

	ec.consumer = consumer
	return nil
}

// Start consumes until ctx is cancelled.
func (ec *EventConsumer) Start(ctx context.Context) error {
	messageCh := make(chan jetstream.Msg, ec.config.MaxAckPending)

	consumeCtx, err := ec.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
			msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutting down")
			return nil
		case msg := <-messageCh:
			if err := ec.handler.Apply(ctx, notificationFrom(msg)); err != nil {
				log.Error().
					Err(err).
					Str("subject", msg.Subject()).
					Msg("failed to process message")
				if nakErr := msg.Nak(); nakErr != nil {
					log.Error().Err(nakErr).Msg("failed to NAK message")
				}
				continue
			}
			if ackErr := msg.Ack(); ackErr != nil {
				log.Error().Err(ackErr).Msg("failed to ACK message")
			}
		}
	}
}

func notificationFrom(msg jetstream.Msg) Notification {
	h := msg.Headers()
	return Notification{
		ID:       h.Get(outbox.HeaderEventID),
		RoomCode: h.Get(outbox.HeaderRoomCode),
		Type:     events.EventType(h.Get(outbox.HeaderEventType)),
		Data:     msg.Data(),
	}
}

func (ec *EventConsumer) Stop() error {
	if ec.nc != nil {
		ec.nc.Close()
	}
	return nil
}
