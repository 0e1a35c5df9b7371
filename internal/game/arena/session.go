// Package arena owns the live game sessions: the tick-driven tug-of-war
// contest between two matched teams, from countdown through the win screen
// and the restart-by-consensus loop.
package arena

import (
	"time"

	"github.com/aurora-0025/onam-game/internal/game/team"
	"github.com/aurora-0025/onam-game/internal/protocol"
)

// Status is the phase of a session's state machine. Transitions are
// monotonic except for the finished -> countdown restart loop.
type Status string

const (
	StatusCountdown Status = "countdown"
	StatusActive    Status = "active"
	StatusFinished  Status = "finished"
)

// sidePlayer is one participant with their click tally.
type sidePlayer struct {
	id     string
	name   string
	clicks int
}

// Side is one half of a session, snapshotted from a matched team. The two
// sides are an order-independent pair internally; the A/B labels only exist
// at serialization time.
type Side struct {
	TeamID   string
	Name     string
	LeaderID string

	players []*sidePlayer
	total   int

	// restart votes by player id; pruned against players on every broadcast
	votes map[string]struct{}
}

// newSide snapshots a team into a fresh side. The session must stay
// independent of the source team, which is discarded after matching, so
// players are copied, not referenced.
func newSide(t *team.Team) *Side {
	s := &Side{
		TeamID:   t.ID,
		Name:     t.Name,
		LeaderID: t.LeaderID,
		votes:    make(map[string]struct{}),
	}
	for _, p := range t.Members {
		s.players = append(s.players, &sidePlayer{id: p.ID, name: p.Name})
	}
	return s
}

func (s *Side) player(id string) *sidePlayer {
	for _, p := range s.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

// remove drops id from the side, reporting whether it was present.
func (s *Side) remove(id string) bool {
	for i, p := range s.players {
		if p.id == id {
			s.players = append(s.players[:i], s.players[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Side) empty() bool {
	return len(s.players) == 0
}

// pruneVotes drops votes cast by players no longer on the side, so a
// disconnect never leaves a tally referencing a departed player.
func (s *Side) pruneVotes() {
	for id := range s.votes {
		if s.player(id) == nil {
			delete(s.votes, id)
		}
	}
}

// allVoted reports whether every current player has voted. False for an
// empty side: nobody is left to consent.
func (s *Side) allVoted() bool {
	if s.empty() {
		return false
	}
	for _, p := range s.players {
		if _, ok := s.votes[p.id]; !ok {
			return false
		}
	}
	return true
}

// reset clears the contest state of the side for a restart, keeping players.
func (s *Side) reset() {
	for _, p := range s.players {
		p.clicks = 0
	}
	s.total = 0
	s.votes = make(map[string]struct{})
}

// Session is one running contest between two sides.
type Session struct {
	ID    string
	Sides [2]*Side

	// Bar is the contest score: clamped difference of the side totals.
	// Negative means side 0 is ahead (winning toward its threshold).
	Bar int

	Status             Status
	Winner             int // side index, -1 while undecided
	CountdownRemaining int
	EndedAt            time.Time

	countdown *time.Timer
	reaper    *time.Timer

	// restartGuard blocks a second restart from a vote landing in the
	// window before the new countdown's first tick runs.
	restartGuard bool
}

// sideOf returns the index of the side holding playerID, or -1.
func (s *Session) sideOf(playerID string) int {
	for i, side := range s.Sides {
		if side.player(playerID) != nil {
			return i
		}
	}
	return -1
}

func (s *Session) bothEmpty() bool {
	return s.Sides[0].empty() && s.Sides[1].empty()
}

// recomputeBar sets Bar to the clamped total difference.
func (s *Session) recomputeBar(threshold int) {
	bar := s.Sides[1].total - s.Sides[0].total
	if bar < -threshold {
		bar = -threshold
	}
	if bar > threshold {
		bar = threshold
	}
	s.Bar = bar
}

// participantIDs lists every player still present, both sides.
func (s *Session) participantIDs() []string {
	var ids []string
	for _, side := range s.Sides {
		for _, p := range side.players {
			ids = append(ids, p.id)
		}
	}
	return ids
}

func (s *Side) view() protocol.SideView {
	v := protocol.SideView{
		TeamID:       s.TeamID,
		Name:         s.Name,
		LeaderID:     s.LeaderID,
		Players:      make([]protocol.SidePlayer, len(s.players)),
		Total:        s.total,
		RestartVotes: make([]string, 0, len(s.votes)),
	}
	for i, p := range s.players {
		v.Players[i] = protocol.SidePlayer{ID: p.id, Name: p.name, Clicks: p.clicks}
	}
	for _, p := range s.players {
		if _, ok := s.votes[p.id]; ok {
			v.RestartVotes = append(v.RestartVotes, p.id)
		}
	}
	return v
}

// viewFor builds the wire projection annotated for a recipient on the given
// side. Votes must already be pruned by the caller.
func (s *Session) viewFor(recipientSide, threshold int) protocol.GameView {
	v := protocol.GameView{
		GameID:       s.ID,
		SideA:        s.Sides[0].view(),
		SideB:        s.Sides[1].view(),
		BarPosition:  s.Bar,
		WinThreshold: threshold,
		Status:       string(s.Status),
		YourTeamIsA:  recipientSide == 0,
	}
	switch s.Winner {
	case 0:
		v.Winner = "A"
	case 1:
		v.Winner = "B"
	}
	if s.Status == StatusCountdown {
		remaining := s.CountdownRemaining
		v.CountdownRemaining = &remaining
	}
	return v
}
