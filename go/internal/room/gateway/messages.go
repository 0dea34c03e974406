package gateway

import (
	"encoding/json"
	"time"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/events"
	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/room/view"
)

// MessageSnapshot is sent once when a socket connects.
const MessageSnapshot events.EventType = "Snapshot"

// Message is what a websocket client receives: the change notification plus
// the room's state after it.
type Message struct {
	ID        string           `json:"id,omitempty"`
	RoomCode  string           `json:"room_code"`
	Type      events.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Data      json.RawMessage  `json:"data,omitempty"`
	State     *view.RoomState  `json:"state,omitempty"`
}

// Notification is one event read off the stream.
type Notification struct {
	ID       string
	RoomCode string
	Type     events.EventType
	Data     json.RawMessage
}
