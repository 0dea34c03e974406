package turn

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
)

// simulate records picks by whoever owns the turn and returns the owners in order.
func simulate(s State, picks int) []string {
	var owners []string
	for i := 0; i < picks; i++ {
		t, ok := s.Current()
		if !ok {
			break
		}
		owners = append(owners, t.ParticipantID)
		s.Picks[t.ParticipantID]++
	}
	return owners
}

func TestSnakeReversal(t *testing.T) {
	s := State{Order: []string{"A", "B", "C"}, Snake: true, Quota: 5, Picks: map[string]int{}}
	assert.Equal(t, []string{"A", "B", "C", "C", "B", "A"}, simulate(s, 6))
}

func TestLinearOrder(t *testing.T) {
	s := State{Order: []string{"A", "B", "C"}, Snake: false, Quota: 5, Picks: map[string]int{}}
	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C"}, simulate(s, 6))
}

func TestCurrentIsPure(t *testing.T) {
	s := State{Order: []string{"A", "B", "C"}, Snake: true, Quota: 5, Picks: map[string]int{"A": 1, "B": 1, "C": 1}}
	first, ok := s.Current()
	require.True(t, ok)
	second, _ := s.Current()
	assert.Equal(t, first, second)
	assert.Equal(t, Turn{ParticipantID: "C", Index: 3, Round: 2, Slot: 2}, first)
}

func TestSkipAdvancesToNextSlot(t *testing.T) {
	s := State{Order: []string{"A", "B", "C"}, Snake: false, Quota: 2, Picks: map[string]int{}}
	s.Skips = 1 // A timed out

	got, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "B", got.ParticipantID)
	assert.Equal(t, 1, got.Index)
}

func TestSkippedParticipantStillReachesQuota(t *testing.T) {
	s := State{Order: []string{"A", "B"}, Snake: false, Quota: 2, Picks: map[string]int{}, Skips: 1}

	owners := simulate(s, 10)

	assert.Equal(t, []string{"B", "A", "B", "A"}, owners)
	assert.True(t, s.Complete())
}

func TestFullDraftersArePassedOver(t *testing.T) {
	s := State{Order: []string{"A", "B", "C"}, Snake: true, Quota: 2, Picks: map[string]int{"A": 2, "B": 1, "C": 2}, Skips: 1}

	got, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "B", got.ParticipantID)
}

func TestCompleteRequiresEveryDrafterAtQuota(t *testing.T) {
	s := State{Order: []string{"A", "B"}, Quota: 1, Picks: map[string]int{"A": 1}}
	assert.False(t, s.Complete())
	s.Picks["B"] = 1
	assert.True(t, s.Complete())
	_, ok := s.Current()
	assert.False(t, ok)

	assert.False(t, State{}.Complete())
}

func TestRemaining(t *testing.T) {
	anchor := time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 30*time.Second, Remaining(anchor.Add(15*time.Second), anchor, 45*time.Second))
	assert.Equal(t, time.Duration(0), Remaining(anchor.Add(time.Minute), anchor, 45*time.Second))
}

func TestEvaluate(t *testing.T) {
	anchor := time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC)
	s := State{Order: []string{"A", "B"}, Quota: 1, Picks: map[string]int{}}

	st := s.Evaluate(anchor, 30*time.Second, anchor.Add(10*time.Second))
	assert.Equal(t, "A", st.Turn.ParticipantID)
	assert.Equal(t, 20*time.Second, st.Remaining)
	assert.Equal(t, anchor.Add(30*time.Second), st.Deadline)
	assert.False(t, st.Expired)

	st = s.Evaluate(anchor, 30*time.Second, anchor.Add(31*time.Second))
	assert.True(t, st.Expired)

	s.Picks = map[string]int{"A": 1, "B": 1}
	st = s.Evaluate(anchor, 30*time.Second, anchor)
	assert.True(t, st.Complete)
}

func TestNewStateOrdersByTurnOrder(t *testing.T) {
	one, zero := 1, 0
	participants := []models.Participant{
		{ID: "second", TurnOrder: &one},
		{ID: "host"},
		{ID: "first", TurnOrder: &zero},
	}
	picks := []models.Pick{{ParticipantID: "first", ItemID: uuid.New()}}

	s := NewState(participants, picks, models.RoomSettings{SnakeDraft: true, PickQuota: 3}, 2)

	assert.Equal(t, []string{"first", "second"}, s.Order)
	assert.Equal(t, 1, s.TotalPicks())
	assert.Equal(t, 2, s.Skips)
	assert.True(t, s.Snake)
}

func TestSlotAt(t *testing.T) {
	round, slot := SlotAt(3, 3, true)
	assert.Equal(t, 2, round)
	assert.Equal(t, 2, slot, "even snake round runs backwards")

	round, slot = SlotAt(3, 3, false)
	assert.Equal(t, 2, round)
	assert.Equal(t, 0, slot)

	round, slot = SlotAt(3, 6, true)
	assert.Equal(t, 3, round)
	assert.Equal(t, 0, slot)
}
