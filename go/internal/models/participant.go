package models

import "time"

// Participant is a member of a room. TurnOrder is assigned once, at draft start.
type Participant struct {
	RoomCode    string    `json:"room_code"`
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Icon        string    `json:"icon"`
	Ready       bool      `json:"ready"`
	TurnOrder   *int      `json:"turn_order,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

// IsDrafter reports whether the participant has a seat in the turn order.
func (p Participant) IsDrafter() bool {
	return p.TurnOrder != nil
}
