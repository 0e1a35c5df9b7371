// Package team owns the team entities and the player-to-team index, from
// creation through membership churn to destruction.
package team

import (
	"math/rand"

	"github.com/aurora-0025/onam-game/internal/protocol"
)

// Player is one member of a team, identified by its connection id.
type Player struct {
	ID   string
	Name string
}

// Team is a group of players waiting to be matched. Its id doubles as the
// invite code other players type to join.
type Team struct {
	ID       string
	Name     string
	Members  []*Player // join order; first member after a leader departure inherits
	LeaderID string
	Queued   bool
}

// Size returns the current member count.
func (t *Team) Size() int {
	return len(t.Members)
}

// Has reports whether playerID is a current member.
func (t *Team) Has(playerID string) bool {
	for _, p := range t.Members {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// MemberIDs returns the member ids in join order.
func (t *Team) MemberIDs() []string {
	ids := make([]string, len(t.Members))
	for i, p := range t.Members {
		ids[i] = p.ID
	}
	return ids
}

// remove drops playerID from the member list, returning the removed player
// or nil if absent.
func (t *Team) remove(playerID string) *Player {
	for i, p := range t.Members {
		if p.ID == playerID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return p
		}
	}
	return nil
}

// Snapshot builds the wire projection of the team.
func (t *Team) Snapshot(maxSize int) protocol.TeamSnapshot {
	players := make([]protocol.PlayerInfo, len(t.Members))
	for i, p := range t.Members {
		players[i] = protocol.PlayerInfo{ID: p.ID, Name: p.Name}
	}
	return protocol.TeamSnapshot{
		TeamID:   t.ID,
		Name:     t.Name,
		Players:  players,
		LeaderID: t.LeaderID,
		Queued:   t.Queued,
		Size:     t.Size(),
		MaxSize:  maxSize,
	}
}

// Invite codes are short so players can type them to teammates. 34^6 codes
// keeps collisions negligible at in-memory scale; NewRegistry still retries
// on the off chance.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

func newInviteCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(code)
}
