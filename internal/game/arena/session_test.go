package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSidedSession() *Session {
	return &Session{
		ID:     "s1",
		Sides:  [2]*Side{newSide(makeTeam("red", 2)), newSide(makeTeam("blue", 2))},
		Winner: -1,
		Status: StatusActive,
	}
}

func TestRecomputeBarClamps(t *testing.T) {
	s := twoSidedSession()

	s.Sides[0].total = 10
	s.Sides[1].total = 4
	s.recomputeBar(25)
	assert.Equal(t, -6, s.Bar)

	s.Sides[1].total = 100
	s.recomputeBar(25)
	assert.Equal(t, 25, s.Bar, "bar never exceeds the threshold")

	s.Sides[0].total = 500
	s.recomputeBar(25)
	assert.Equal(t, -25, s.Bar)
}

func TestSideOf(t *testing.T) {
	s := twoSidedSession()
	assert.Equal(t, 0, s.sideOf("red-b"))
	assert.Equal(t, 1, s.sideOf("blue-a"))
	assert.Equal(t, -1, s.sideOf("ghost"))
}

func TestAllVoted(t *testing.T) {
	s := twoSidedSession()
	side := s.Sides[0]

	assert.False(t, side.allVoted())
	side.votes["red-a"] = struct{}{}
	assert.False(t, side.allVoted())
	side.votes["red-b"] = struct{}{}
	assert.True(t, side.allVoted())

	// An empty side can never consent to a restart.
	side.players = nil
	assert.False(t, side.allVoted())
}

func TestPruneVotesDropsDeparted(t *testing.T) {
	s := twoSidedSession()
	side := s.Sides[0]
	side.votes["red-a"] = struct{}{}
	side.votes["red-b"] = struct{}{}

	require.True(t, side.remove("red-a"))
	side.pruneVotes()

	assert.Len(t, side.votes, 1)
	_, ok := side.votes["red-b"]
	assert.True(t, ok)
}

func TestViewForLabelsWinner(t *testing.T) {
	s := twoSidedSession()

	view := s.viewFor(0, 25)
	assert.Empty(t, view.Winner, "no winner while undecided")
	assert.True(t, view.YourTeamIsA)

	s.Status = StatusFinished
	s.Winner = 1
	view = s.viewFor(1, 25)
	assert.Equal(t, "B", view.Winner)
	assert.False(t, view.YourTeamIsA)
	assert.Nil(t, view.CountdownRemaining)
}

func TestSideReset(t *testing.T) {
	s := twoSidedSession()
	side := s.Sides[1]
	side.players[0].clicks = 7
	side.total = 12
	side.votes["blue-a"] = struct{}{}

	side.reset()

	assert.Equal(t, 0, side.total)
	assert.Equal(t, 0, side.players[0].clicks)
	assert.Empty(t, side.votes)
	assert.Len(t, side.players, 2, "reset keeps players")
}
