// Package rating derives room-scoped item state (airing, aired, mean, points)
// from the rating events recorded in a room.
package rating

import (
	"math"

	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
)

// Points maps a mean star rating onto the 10..90 points range:
// round(mean × 20) − 10.
func Points(mean float64) int {
	return int(math.Round(mean*20)) - 10
}

// ItemState derives the room-scoped state of one item. Timeout events count as
// responses (the item has aired) but are left out of the mean. Items without
// a single star rating are worth nothing.
func ItemState(room models.Room, itemID uuid.UUID, events []models.RatingEvent) models.RoomItemState {
	st := models.RoomItemState{
		ItemID:   itemID,
		IsAiring: room.IsAiring(itemID),
	}

	sum := 0
	for _, e := range events {
		if e.RoomCode != room.Code || e.ItemID != itemID {
			continue
		}
		st.ResponseCount++
		if e.IsTimeout() {
			continue
		}
		st.RatingCount++
		sum += e.Stars
	}

	st.Aired = st.ResponseCount > 0
	if st.RatingCount > 0 {
		st.MeanRating = float64(sum) / float64(st.RatingCount)
		st.Points = Points(st.MeanRating)
	}
	return st
}

// ItemStates derives the state of every item in itemIDs.
func ItemStates(room models.Room, itemIDs []uuid.UUID, events []models.RatingEvent) map[uuid.UUID]models.RoomItemState {
	byItem := make(map[uuid.UUID][]models.RatingEvent)
	for _, e := range events {
		byItem[e.ItemID] = append(byItem[e.ItemID], e)
	}
	out := make(map[uuid.UUID]models.RoomItemState, len(itemIDs))
	for _, id := range itemIDs {
		out[id] = ItemState(room, id, byItem[id])
	}
	return out
}

// EligibleRaters lists the room members allowed to rate itemID: every
// participant plus the host, minus whoever drafted the item.
func EligibleRaters(room models.Room, participants []models.Participant, picks []models.Pick, itemID uuid.UUID) []string {
	owners := make(map[string]bool)
	for _, pk := range picks {
		if pk.ItemID == itemID {
			owners[pk.ParticipantID] = true
		}
	}
	eligible := make([]string, 0, len(participants)+1)
	hostSeen := false
	for _, p := range participants {
		if p.ID == room.HostID {
			hostSeen = true
		}
		if !owners[p.ID] {
			eligible = append(eligible, p.ID)
		}
	}
	if !hostSeen && room.HostID != "" && !owners[room.HostID] {
		eligible = append(eligible, room.HostID)
	}
	return eligible
}

// IsMember reports whether id is the host or a participant of the room.
func IsMember(room models.Room, participants []models.Participant, id string) bool {
	if id != "" && id == room.HostID {
		return true
	}
	for _, p := range participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// WindowComplete reports whether every eligible rater has responded to itemID.
func WindowComplete(eligible []string, events []models.RatingEvent, itemID uuid.UUID) bool {
	responded := make(map[string]bool)
	for _, e := range events {
		if e.ItemID == itemID {
			responded[e.ParticipantID] = true
		}
	}
	for _, id := range eligible {
		if !responded[id] {
			return false
		}
	}
	return true
}
