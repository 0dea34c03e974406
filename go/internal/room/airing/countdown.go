// Package airing derives the rating-window countdown from the room's airing
// start timestamp. Every observer computes the same value from the same
// timestamp, so no process has to tick the countdown.
package airing

import (
	"time"

	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
)

const DefaultWindow = 120 * time.Second

// Countdown is the rating window of the currently airing item.
type Countdown struct {
	ItemID    uuid.UUID     `json:"item_id"`
	StartedAt time.Time     `json:"started_at"`
	Deadline  time.Time     `json:"deadline"`
	Remaining time.Duration `json:"remaining"`
	Expired   bool          `json:"expired"`
}

// Remaining is max(0, window − (now − start)).
func Remaining(now, start time.Time, window time.Duration) time.Duration {
	left := window - now.Sub(start)
	if left < 0 {
		return 0
	}
	return left
}

// For returns the countdown of room's airing item; ok is false when nothing airs.
func For(room models.Room, window time.Duration, now time.Time) (Countdown, bool) {
	if room.AiringItemID == nil || room.AiringStartedAt == nil {
		return Countdown{}, false
	}
	start := *room.AiringStartedAt
	left := Remaining(now, start, window)
	return Countdown{
		ItemID:    *room.AiringItemID,
		StartedAt: start,
		Deadline:  start.Add(window),
		Remaining: left,
		Expired:   left == 0,
	}, true
}

// Pending lists the eligible raters with no event yet for itemID, in the
// order given.
func Pending(eligible []string, events []models.RatingEvent, itemID uuid.UUID) []string {
	responded := make(map[string]bool, len(events))
	for _, e := range events {
		if e.ItemID == itemID {
			responded[e.ParticipantID] = true
		}
	}
	pending := make([]string, 0, len(eligible))
	for _, id := range eligible {
		if !responded[id] {
			pending = append(pending, id)
		}
	}
	return pending
}

// TimeoutRatings builds the zero-star events submitted on behalf of pending
// raters once the window has expired.
func TimeoutRatings(roomCode string, itemID uuid.UUID, pending []string, now time.Time) []models.RatingEvent {
	events := make([]models.RatingEvent, 0, len(pending))
	for _, id := range pending {
		events = append(events, models.RatingEvent{
			ID:            uuid.New(),
			RoomCode:      roomCode,
			ParticipantID: id,
			ItemID:        itemID,
			Stars:         models.TimeoutStars,
			CreatedAt:     now,
		})
	}
	return events
}
