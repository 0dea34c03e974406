package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is one row of room_outbox.
type OutboxEvent struct {
	ID        uuid.UUID  `json:"id"`
	RoomCode  string     `json:"room_code"`
	EventType string     `json:"event_type"`
	Payload   []byte     `json:"payload"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// Publisher delivers an outbox event to the message bus.
type Publisher interface {
	Publish(ctx context.Context, event OutboxEvent) error
}
