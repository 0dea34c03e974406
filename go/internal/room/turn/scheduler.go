// Package turn computes whose turn it is in a draft, how long they have left
// and when the draft is over. Everything here is a pure function of the
// roster, the recorded picks, the skip counter and the clock reading.
package turn

import (
	"sort"
	"time"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
)

// State is the input to every turn computation.
type State struct {
	Order []string       // participant ids by turn order
	Snake bool           // reverse even rounds
	Quota int            // picks per participant
	Picks map[string]int // recorded picks per participant
	Skips int            // timed-out turns
}

// Turn identifies the participant on the clock.
type Turn struct {
	ParticipantID string `json:"participant_id"`
	Index         int    `json:"index"` // 0-based turn index (picks + skips, plus any passed-over full drafters)
	Round         int    `json:"round"`
	Slot          int    `json:"slot"`
}

// Status is the full clock picture at a given instant.
type Status struct {
	Turn      Turn          `json:"turn"`
	Complete  bool          `json:"complete"`
	Remaining time.Duration `json:"remaining"`
	Deadline  time.Time     `json:"deadline"`
	Expired   bool          `json:"expired"`
}

// NewState builds a State from the roster and the picks recorded so far.
// Participants without a turn order are ignored.
func NewState(participants []models.Participant, picks []models.Pick, settings models.RoomSettings, skips int) State {
	drafters := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsDrafter() {
			drafters = append(drafters, p)
		}
	}
	sort.Slice(drafters, func(i, j int) bool { return *drafters[i].TurnOrder < *drafters[j].TurnOrder })

	order := make([]string, len(drafters))
	for i, p := range drafters {
		order[i] = p.ID
	}

	counts := make(map[string]int, len(order))
	for _, pk := range picks {
		counts[pk.ParticipantID]++
	}

	return State{
		Order: order,
		Snake: settings.SnakeDraft,
		Quota: settings.PickQuota,
		Picks: counts,
		Skips: skips,
	}
}

// TotalPicks is the number of picks recorded across all drafters.
func (s State) TotalPicks() int {
	total := 0
	for _, id := range s.Order {
		total += s.Picks[id]
	}
	return total
}

// SlotAt maps turn index k onto a round (1-based) and a position in the order.
func SlotAt(n, k int, snake bool) (round, slot int) {
	round = k/n + 1
	slot = k % n
	if snake && round%2 == 0 {
		slot = n - 1 - slot
	}
	return round, slot
}

// Complete reports whether every drafter holds the quota.
func (s State) Complete() bool {
	if len(s.Order) == 0 {
		return false
	}
	for _, id := range s.Order {
		if s.Picks[id] < s.Quota {
			return false
		}
	}
	return true
}

// Current returns the turn owner. Drafters already at quota are passed over
// by scanning forward; any window of 2n consecutive indices contains a full
// round, so the scan is bounded. ok is false when the draft is complete.
func (s State) Current() (Turn, bool) {
	n := len(s.Order)
	if n == 0 || s.Complete() {
		return Turn{}, false
	}

	start := s.TotalPicks() + s.Skips
	for k := start; k < start+2*n; k++ {
		round, slot := SlotAt(n, k, s.Snake)
		id := s.Order[slot]
		if s.Picks[id] < s.Quota {
			return Turn{ParticipantID: id, Index: k, Round: round, Slot: slot}, true
		}
	}
	return Turn{}, false
}

// Remaining is duration − (now − anchor), floored at zero.
func Remaining(now, anchor time.Time, duration time.Duration) time.Duration {
	left := duration - now.Sub(anchor)
	if left < 0 {
		return 0
	}
	return left
}

// Evaluate combines the turn owner with the clock.
func (s State) Evaluate(anchor time.Time, duration time.Duration, now time.Time) Status {
	t, ok := s.Current()
	if !ok {
		return Status{Complete: len(s.Order) > 0}
	}
	left := Remaining(now, anchor, duration)
	return Status{
		Turn:      t,
		Remaining: left,
		Deadline:  anchor.Add(duration),
		Expired:   left == 0,
	}
}
