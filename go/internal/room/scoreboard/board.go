// Package scoreboard ranks participants by the points of the aired items they
// drafted and breaks a participant's score down pick by pick.
package scoreboard

import (
	"sort"

	"github.com/google/uuid"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/models"
)

// Standing is one row of the leaderboard.
type Standing struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Icon          string `json:"icon"`
	Score         int    `json:"score"`
	Rank          int    `json:"rank"`
	Picks         int    `json:"picks"`
	AiredPicks    int    `json:"aired_picks"`
}

// LineupEntry is one drafted item with the points it currently contributes.
type LineupEntry struct {
	Pick   models.Pick          `json:"pick"`
	State  models.RoomItemState `json:"state"`
	Points int                  `json:"points"`
}

// Lineup is a participant's picks with their point breakdown.
type Lineup struct {
	ParticipantID string        `json:"participant_id"`
	Entries       []LineupEntry `json:"entries"`
	Total         int           `json:"total"`
}

// Contribution is what an item adds to its owner's score: its points once it
// has aired, nothing while unaired or still airing without ratings.
func Contribution(st models.RoomItemState) int {
	if !st.Aired {
		return 0
	}
	return st.Points
}

// Leaderboard sorts drafters by score, highest first. Equal scores keep join
// order (then id) and share a rank, so ranks run 1,1,3. Before the draft
// starts nobody has a seat, and every participant is listed.
func Leaderboard(participants []models.Participant, picks []models.Pick, states map[uuid.UUID]models.RoomItemState) []Standing {
	roster := drafters(participants)

	byID := make(map[string]*Standing, len(roster))
	joined := make(map[string]int64, len(roster))
	standings := make([]Standing, len(roster))
	for i, p := range roster {
		standings[i] = Standing{ParticipantID: p.ID, DisplayName: p.DisplayName, Icon: p.Icon}
		byID[p.ID] = &standings[i]
		joined[p.ID] = p.JoinedAt.UnixNano()
	}

	for _, pk := range picks {
		s, ok := byID[pk.ParticipantID]
		if !ok {
			continue
		}
		s.Picks++
		st := states[pk.ItemID]
		if st.Aired {
			s.AiredPicks++
		}
		s.Score += Contribution(st)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if joined[a.ParticipantID] != joined[b.ParticipantID] {
			return joined[a.ParticipantID] < joined[b.ParticipantID]
		}
		return a.ParticipantID < b.ParticipantID
	})

	for i := range standings {
		if i > 0 && standings[i].Score == standings[i-1].Score {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
	return standings
}

// BuildLineup collects participantID's picks in draft order.
func BuildLineup(participantID string, picks []models.Pick, states map[uuid.UUID]models.RoomItemState) Lineup {
	lineup := Lineup{ParticipantID: participantID, Entries: []LineupEntry{}}
	for _, pk := range picks {
		if pk.ParticipantID != participantID {
			continue
		}
		st, ok := states[pk.ItemID]
		if !ok {
			st = models.RoomItemState{ItemID: pk.ItemID}
		}
		pts := Contribution(st)
		lineup.Entries = append(lineup.Entries, LineupEntry{Pick: pk, State: st, Points: pts})
		lineup.Total += pts
	}
	sort.Slice(lineup.Entries, func(i, j int) bool {
		return lineup.Entries[i].Pick.Sequence < lineup.Entries[j].Pick.Sequence
	})
	return lineup
}

func drafters(participants []models.Participant) []models.Participant {
	var seated []models.Participant
	for _, p := range participants {
		if p.IsDrafter() {
			seated = append(seated, p)
		}
	}
	if len(seated) == 0 {
		return participants
	}
	return seated
}
