package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/outbox"
)

const (
	consumerName          = "room-orchestrator"
	consumerMaxDeliver    = 5
	consumerAckWait       = 30 * time.Second
	consumerMaxAckPending = 256

	natsMaxReconnects = -1
	natsReconnectWait = 2 * time.Second
)

// wakeEvents move a deadline: a new turn clock or airing window started, or
// one went away.
var wakeEvents = map[events.EventType]bool{
	events.DraftStarted:   true,
	events.PickMade:       true,
	events.TurnSkipped:    true,
	events.AiringStarted:  true,
	events.AiringClosed:   true,
	events.RoomReset:      true,
	events.RoomClosed:     true,
	events.DraftCompleted: true,
}

// EventWaker rescans early when room events arrive over JetStream. Without it
// the orchestrator still fires every timeout, just on its poll tick.
type EventWaker struct {
	nc       *nats.Conn
	consumer jetstream.Consumer
	orch     *Orchestrator
}

// setupNATSConnection creates a NATS connection with JetStream
func setupNATSConnection(natsURL string) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.Name(consumerName),
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return nc, js, nil
}

// NewEventWaker connects to NATS and creates or reuses the durable consumer.
func NewEventWaker(ctx context.Context, natsURL string, orch *Orchestrator) (*EventWaker, error) {
	nc, js, err := setupNATSConnection(natsURL)
	if err != nil {
		return nil, err
	}

	jsCfg := outbox.DefaultJetStreamConfig()
	stream, err := js.CreateOrUpdateStream(ctx, jsCfg.StreamConfig())
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	consumer, err := stream.Consumer(ctx, consumerName)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, jetstream.ConsumerConfig{
			Name:          consumerName,
			Durable:       consumerName,
			Description:   "Wakes the room orchestrator when deadlines move",
			FilterSubject: events.SubjectPrefix + ">",
			// past events carry no deadline the next scan won't already see
			DeliverPolicy: jetstream.DeliverNewPolicy,
			AckPolicy:     jetstream.AckExplicitPolicy,
			MaxDeliver:    consumerMaxDeliver,
			AckWait:       consumerAckWait,
			MaxAckPending: consumerMaxAckPending,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("create consumer: %w", err)
		}
		log.Info().Msg("created JetStream consumer for orchestrator")
	} else {
		log.Info().Msg("using existing JetStream consumer for orchestrator")
	}

	return &EventWaker{nc: nc, consumer: consumer, orch: orch}, nil
}

// Run consumes until ctx is cancelled.
func (w *EventWaker) Run(ctx context.Context) error {
	msgCh := make(chan jetstream.Msg, consumerMaxAckPending)
	cc, err := w.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case msgCh <- msg:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}
	defer cc.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-msgCh:
			w.handle(msg)
		}
	}
}

func (w *EventWaker) handle(msg jetstream.Msg) {
	eventType := events.EventType(msg.Headers().Get(outbox.HeaderEventType))
	if wakeEvents[eventType] {
		log.Debug().
			Str("event_type", string(eventType)).
			Str("room_code", msg.Headers().Get(outbox.HeaderRoomCode)).
			Msg("waking orchestrator")
		w.orch.Wake()
	}
	if err := msg.Ack(); err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject()).Msg("ack failed")
	}
}

// Close gracefully closes the NATS connection.
func (w *EventWaker) Close() error {
	if w.nc != nil {
		w.nc.Close()
	}
	return nil
}
