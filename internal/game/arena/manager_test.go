package arena

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-0025/onam-game/internal/game"
	"github.com/aurora-0025/onam-game/internal/game/team"
	"github.com/aurora-0025/onam-game/internal/protocol"
)

type recorder struct {
	sent map[string][]protocol.Message
}

func newRecorder() *recorder {
	return &recorder{sent: make(map[string][]protocol.Message)}
}

func (r *recorder) Send(playerID string, msg protocol.Message) {
	r.sent[playerID] = append(r.sent[playerID], msg)
}

// lastView decodes the most recent game view sent to a player.
func (r *recorder) lastView(t *testing.T, playerID string) protocol.GameView {
	t.Helper()
	msgs := r.sent[playerID]
	require.NotEmpty(t, msgs, "no messages for %s", playerID)
	var view protocol.GameView
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1].Payload, &view))
	return view
}

type pubRecorder struct {
	started  []string
	finished []string // winner team ids
}

func (p *pubRecorder) MatchStarted(gameID, teamA, teamB string) {
	p.started = append(p.started, gameID)
}

func (p *pubRecorder) MatchFinished(gameID, winner string, bar int) {
	p.finished = append(p.finished, winner)
}

// newTestManager runs dispatch inline and arms timers that never fire, so
// tests drive ticks by calling countdownTick/reap directly.
func newTestManager() (*Manager, *recorder, *pubRecorder) {
	rec := newRecorder()
	pub := &pubRecorder{}
	m := NewManager(game.DefaultConfig(), rec, pub, func(fn func()) { fn() }, slog.Default())
	m.newTimer = func(d time.Duration, fn func()) *time.Timer {
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	}
	return m, rec, pub
}

func makeTeam(id string, size int) *team.Team {
	t := &team.Team{ID: id, Name: id}
	for i := 0; i < size; i++ {
		pid := id + "-" + string(rune('a'+i))
		t.Members = append(t.Members, &team.Player{ID: pid, Name: pid})
	}
	t.LeaderID = t.Members[0].ID
	return t
}

// startMatch starts a session between two fresh teams and returns it.
func startMatch(t *testing.T, m *Manager, size int) *Session {
	t.Helper()
	m.StartMatch(makeTeam("red", size), makeTeam("blue", size))
	require.Len(t, m.sessions, 1)
	for _, s := range m.sessions {
		return s
	}
	return nil
}

// toActive ticks a countdown session through to active.
func toActive(t *testing.T, m *Manager, s *Session) {
	t.Helper()
	for i := 0; i < m.cfg.CountdownSeconds; i++ {
		m.countdownTick(s.ID)
	}
	require.Equal(t, StatusActive, s.Status)
}

func TestStartMatchSnapshotsTeams(t *testing.T) {
	m, rec, pub := newTestManager()
	red := makeTeam("red", 2)
	blue := makeTeam("blue", 2)

	m.StartMatch(red, blue)

	var s *Session
	for _, got := range m.sessions {
		s = got
	}
	require.NotNil(t, s)
	assert.Equal(t, StatusCountdown, s.Status)
	assert.Equal(t, 3, s.CountdownRemaining)
	assert.Equal(t, 0, s.Bar)
	assert.Equal(t, -1, s.Winner)
	assert.Equal(t, []string{s.ID}, pub.started)

	// Mutating the source teams must not touch the session.
	red.Members = nil
	blue.LeaderID = "someone-else"
	assert.Len(t, s.Sides[0].players, 2)
	assert.Equal(t, "blue-a", s.Sides[1].LeaderID)

	// Everyone got the initial broadcast with their own side annotation.
	for _, pid := range []string{"red-a", "red-b"} {
		view := rec.lastView(t, pid)
		assert.Equal(t, protocol.EvtGameStarted, rec.sent[pid][0].Type)
		assert.True(t, view.YourTeamIsA)
		require.NotNil(t, view.CountdownRemaining)
		assert.Equal(t, 3, *view.CountdownRemaining)
	}
	for _, pid := range []string{"blue-a", "blue-b"} {
		assert.False(t, rec.lastView(t, pid).YourTeamIsA)
	}
}

func TestCountdownRunsToActive(t *testing.T) {
	m, rec, _ := newTestManager()
	s := startMatch(t, m, 1)

	m.countdownTick(s.ID)
	assert.Equal(t, StatusCountdown, s.Status)
	view := rec.lastView(t, "red-a")
	require.NotNil(t, view.CountdownRemaining)
	assert.Equal(t, 2, *view.CountdownRemaining)

	m.countdownTick(s.ID)
	m.countdownTick(s.ID)
	assert.Equal(t, StatusActive, s.Status)
	view = rec.lastView(t, "red-a")
	assert.Equal(t, "active", view.Status)
	assert.Nil(t, view.CountdownRemaining)
}

func TestClickBeforeActiveRejected(t *testing.T) {
	m, _, _ := newTestManager()
	startMatch(t, m, 1)
	assert.ErrorIs(t, m.Click("red-a"), ErrGameNotActive)
}

func TestClickScoringAndThresholdWin(t *testing.T) {
	m, rec, pub := newTestManager()
	s := startMatch(t, m, 1)
	toActive(t, m, s)

	for i := 0; i < 24; i++ {
		require.NoError(t, m.Click("red-a"))
	}
	assert.Equal(t, -24, s.Bar)
	assert.Equal(t, StatusActive, s.Status)

	require.NoError(t, m.Click("red-a"))
	assert.Equal(t, -25, s.Bar)
	assert.Equal(t, StatusFinished, s.Status)
	assert.Equal(t, 0, s.Winner)
	assert.Equal(t, []string{"red"}, pub.finished)

	view := rec.lastView(t, "blue-a")
	assert.Equal(t, "finished", view.Status)
	assert.Equal(t, "A", view.Winner)
	assert.Equal(t, 25, view.SideA.Total)

	assert.ErrorIs(t, m.Click("red-a"), ErrGameNotActive)
}

func TestOpposingClicksMoveBarBothWays(t *testing.T) {
	m, _, _ := newTestManager()
	s := startMatch(t, m, 1)
	toActive(t, m, s)

	require.NoError(t, m.Click("red-a"))
	require.NoError(t, m.Click("blue-a"))
	require.NoError(t, m.Click("blue-a"))
	assert.Equal(t, 1, s.Bar)
	assert.Equal(t, StatusActive, s.Status)
}

func TestClickFromStrangerRejected(t *testing.T) {
	m, _, _ := newTestManager()
	s := startMatch(t, m, 1)
	toActive(t, m, s)
	assert.ErrorIs(t, m.Click("ghost"), ErrNotInGame)
}

func TestLeaveWithPlayersRemainingDoesNotForfeit(t *testing.T) {
	m, _, _ := newTestManager()
	s := startMatch(t, m, 2)
	toActive(t, m, s)

	require.NoError(t, m.Leave("red-b"))
	assert.Equal(t, StatusActive, s.Status, "a shrunken side is not a forfeit")
	assert.Len(t, s.Sides[0].players, 1)
}

func TestEmptySideForfeitsMidGame(t *testing.T) {
	m, rec, pub := newTestManager()
	s := startMatch(t, m, 2)
	toActive(t, m, s)

	m.Disconnect("red-a")
	require.Equal(t, StatusActive, s.Status)
	m.Disconnect("red-b")

	assert.Equal(t, StatusFinished, s.Status)
	assert.Equal(t, 1, s.Winner)
	assert.Equal(t, []string{"blue"}, pub.finished)
	assert.Equal(t, "B", rec.lastView(t, "blue-a").Winner)
}

func TestLeaveConfirmsAndDisconnectDoesNot(t *testing.T) {
	m, rec, _ := newTestManager()
	s := startMatch(t, m, 2)
	toActive(t, m, s)

	require.NoError(t, m.Leave("red-a"))
	last := rec.sent["red-a"][len(rec.sent["red-a"])-1]
	assert.Equal(t, protocol.EvtGameLeft, last.Type)

	before := len(rec.sent["red-b"])
	m.Disconnect("red-b")
	assert.Len(t, rec.sent["red-b"], before, "departed identity is unreachable")

	assert.ErrorIs(t, m.Leave("red-a"), ErrNotInGame)
}

func TestBothSidesEmptyDestroysSession(t *testing.T) {
	m, _, _ := newTestManager()
	s := startMatch(t, m, 1)
	toActive(t, m, s)

	m.Disconnect("red-a")
	m.Disconnect("blue-a")

	assert.Empty(t, m.sessions)
	assert.Empty(t, m.byPlayer)
}

func TestCountdownLeaverForfeitsAtWhistle(t *testing.T) {
	m, _, _ := newTestManager()
	s := startMatch(t, m, 1)

	m.Disconnect("red-a")
	assert.Equal(t, StatusCountdown, s.Status, "no forfeit during countdown")

	for i := 0; i < 3; i++ {
		m.countdownTick(s.ID)
	}
	assert.Equal(t, StatusFinished, s.Status)
	assert.Equal(t, 1, s.Winner)
}

func TestStaleCountdownTickIsNoop(t *testing.T) {
	m, _, _ := newTestManager()
	s := startMatch(t, m, 1)
	id := s.ID

	m.Disconnect("red-a")
	m.Disconnect("blue-a")
	require.Empty(t, m.sessions)

	m.countdownTick(id) // must not panic or revive anything
	assert.Empty(t, m.sessions)
}

func finished1v1(t *testing.T) (*Manager, *recorder, *Session) {
	t.Helper()
	m, rec, _ := newTestManager()
	s := startMatch(t, m, 1)
	toActive(t, m, s)
	for i := 0; i < 25; i++ {
		require.NoError(t, m.Click("red-a"))
	}
	require.Equal(t, StatusFinished, s.Status)
	return m, rec, s
}

func TestRestartRequiresUnanimity(t *testing.T) {
	m, rec, s := finished1v1(t)

	require.NoError(t, m.VoteRestart("red-a"))
	assert.Equal(t, StatusFinished, s.Status, "one side voting is not enough")
	view := rec.lastView(t, "blue-a")
	assert.Equal(t, []string{"red-a"}, view.SideA.RestartVotes)

	require.NoError(t, m.VoteRestart("blue-a"))
	assert.Equal(t, StatusCountdown, s.Status)
	assert.Equal(t, 3, s.CountdownRemaining)
	assert.Equal(t, 0, s.Bar)
	assert.Equal(t, -1, s.Winner)
	assert.Empty(t, s.Sides[0].votes)
	assert.Empty(t, s.Sides[1].votes)
	assert.Equal(t, 0, s.Sides[0].total)
	assert.Equal(t, 0, s.Sides[0].players[0].clicks)
}

func TestVoteIsIdempotent(t *testing.T) {
	m, _, s := finished1v1(t)
	require.NoError(t, m.VoteRestart("red-a"))
	require.NoError(t, m.VoteRestart("red-a"))
	assert.Equal(t, StatusFinished, s.Status)
	assert.Len(t, s.Sides[0].votes, 1)
}

func TestVoteOutsideFinishedRejected(t *testing.T) {
	m, _, _ := newTestManager()
	s := startMatch(t, m, 1)
	assert.ErrorIs(t, m.VoteRestart("red-a"), ErrGameNotFinished)
	toActive(t, m, s)
	assert.ErrorIs(t, m.VoteRestart("red-a"), ErrGameNotFinished)
}

func TestVoteAgainstEmptySideRejected(t *testing.T) {
	m, _, s := finished1v1(t)
	m.Disconnect("red-a")
	require.Equal(t, StatusFinished, s.Status)
	assert.ErrorIs(t, m.VoteRestart("blue-a"), ErrCannotRestartEmptySide)
}

func TestRestartGuardBlocksVotesUntilFirstTick(t *testing.T) {
	m, _, s := finished1v1(t)
	require.NoError(t, m.VoteRestart("red-a"))
	require.NoError(t, m.VoteRestart("blue-a"))
	require.Equal(t, StatusCountdown, s.Status)
	require.True(t, s.restartGuard)

	assert.ErrorIs(t, m.VoteRestart("red-a"), ErrGameNotFinished)

	m.countdownTick(s.ID)
	assert.False(t, s.restartGuard)
}

func TestDisconnectPrunesVotes(t *testing.T) {
	m, rec, _ := newTestManager()
	s := startMatch(t, m, 2)
	toActive(t, m, s)
	for i := 0; i < 25; i++ {
		require.NoError(t, m.Click("blue-a"))
	}
	require.Equal(t, StatusFinished, s.Status)

	require.NoError(t, m.VoteRestart("red-a"))
	m.Disconnect("red-a")

	view := rec.lastView(t, "red-b")
	assert.Empty(t, view.SideA.RestartVotes, "a departed player's vote never survives a broadcast")
}

func TestReapRetiresFinishedSession(t *testing.T) {
	m, rec, s := finished1v1(t)
	id := s.ID

	m.reap(id)

	assert.Empty(t, m.sessions)
	for _, pid := range []string{"red-a", "blue-a"} {
		last := rec.sent[pid][len(rec.sent[pid])-1]
		assert.Equal(t, protocol.EvtGameLeft, last.Type)
	}
}

func TestReapAfterRestartIsNoop(t *testing.T) {
	m, _, s := finished1v1(t)
	id := s.ID
	require.NoError(t, m.VoteRestart("red-a"))
	require.NoError(t, m.VoteRestart("blue-a"))
	require.Equal(t, StatusCountdown, s.Status)

	m.reap(id)

	assert.Len(t, m.sessions, 1, "a restarted session outlives its old reaper")
}

func TestViewAnnotatesRequester(t *testing.T) {
	m, _, s := finished1v1(t)

	viewA, err := m.View("red-a")
	require.NoError(t, err)
	assert.True(t, viewA.YourTeamIsA)
	assert.Equal(t, "A", viewA.Winner)
	assert.Equal(t, s.ID, viewA.GameID)

	viewB, err := m.View("blue-a")
	require.NoError(t, err)
	assert.False(t, viewB.YourTeamIsA)

	_, err = m.View("ghost")
	assert.ErrorIs(t, err, ErrNotInGame)
}
