package arena

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aurora-0025/onam-game/internal/game"
	"github.com/aurora-0025/onam-game/internal/game/team"
	"github.com/aurora-0025/onam-game/internal/protocol"
)

// Sender delivers a message to a single connected player.
type Sender interface {
	Send(playerID string, msg protocol.Message)
}

// Publisher receives match telemetry. Implementations must be fire-and-
// forget: the manager never reads anything back from them.
type Publisher interface {
	MatchStarted(gameID, teamA, teamB string)
	MatchFinished(gameID, winnerTeam string, barPosition int)
}

// Manager owns every live session and the player-to-session index, and is
// the factory the matchmaking queue hands matched team pairs to. All methods
// run on the hub goroutine; timers re-enter it through dispatch.
type Manager struct {
	cfg      game.Config
	sender   Sender
	events   Publisher
	log      *slog.Logger
	dispatch func(func())

	sessions map[string]*Session
	byPlayer map[string]string // player id -> session id

	// newTimer arms a timer whose callback runs fn on the hub goroutine.
	// Swapped out in tests so ticks can be driven by hand.
	newTimer func(d time.Duration, fn func()) *time.Timer
}

// NewManager builds an empty session manager. dispatch must marshal a
// closure onto the same goroutine every other method is called from.
func NewManager(cfg game.Config, sender Sender, events Publisher, dispatch func(func()), log *slog.Logger) *Manager {
	m := &Manager{
		cfg:      cfg,
		sender:   sender,
		events:   events,
		log:      log,
		dispatch: dispatch,
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]string),
	}
	m.newTimer = func(d time.Duration, fn func()) *time.Timer {
		return time.AfterFunc(d, func() { m.dispatch(fn) })
	}
	return m
}

// StartMatch is the session factory: it snapshots the two matched teams into
// a new session, indexes every participant, starts the countdown and sends
// each participant the initial state. The team objects are not kept.
func (m *Manager) StartMatch(a, b *team.Team) {
	s := &Session{
		ID:                 uuid.NewString(),
		Sides:              [2]*Side{newSide(a), newSide(b)},
		Status:             StatusCountdown,
		Winner:             -1,
		CountdownRemaining: m.cfg.CountdownSeconds,
	}
	m.sessions[s.ID] = s
	for _, id := range s.participantIDs() {
		m.byPlayer[id] = s.ID
	}

	m.log.Info("session started", "game", s.ID, "teamA", a.ID, "teamB", b.ID, "size", a.Size())
	m.events.MatchStarted(s.ID, a.ID, b.ID)

	m.armCountdown(s)
	m.broadcast(s, protocol.EvtGameStarted)
}

// Click scores one click for the player, moving the bar and finishing the
// session if the bar reaches the win threshold.
func (m *Manager) Click(playerID string) error {
	s, err := m.sessionOf(playerID)
	if err != nil {
		return err
	}
	if s.Status != StatusActive {
		return ErrGameNotActive
	}
	idx := s.sideOf(playerID)
	if idx < 0 {
		return ErrPlayerNotInGame
	}

	side := s.Sides[idx]
	side.player(playerID).clicks += m.cfg.ClickPower
	side.total += m.cfg.ClickPower
	s.recomputeBar(m.cfg.WinThreshold)

	if winner := m.winnerByBar(s); winner >= 0 {
		m.finish(s, winner)
	}
	m.broadcast(s, protocol.EvtGameUpdate)
	return nil
}

// Leave removes a player at their own request, confirming the departure.
func (m *Manager) Leave(playerID string) error {
	s, err := m.sessionOf(playerID)
	if err != nil {
		return err
	}
	gameID := s.ID
	m.removePlayer(s, playerID)
	m.sender.Send(playerID, protocol.New(protocol.EvtGameLeft, protocol.GameLeft{GameID: gameID}))
	return nil
}

// Disconnect removes a player whose connection dropped. No-op if the player
// was not in a session; nothing is sent to the departed identity.
func (m *Manager) Disconnect(playerID string) {
	s, err := m.sessionOf(playerID)
	if err != nil {
		return
	}
	m.removePlayer(s, playerID)
}

// removePlayer is the shared leave/disconnect path.
func (m *Manager) removePlayer(s *Session, playerID string) {
	delete(m.byPlayer, playerID)
	idx := s.sideOf(playerID)
	if idx < 0 {
		return
	}
	s.Sides[idx].remove(playerID)

	if s.bothEmpty() {
		m.destroy(s)
		return
	}

	// A side emptied mid-game hands the win to its opponent. During the
	// countdown no contest is running yet, so nothing to re-evaluate.
	if s.Status == StatusActive {
		if winner := m.winnerByForfeit(s); winner >= 0 {
			m.finish(s, winner)
		}
	}
	m.broadcast(s, protocol.EvtGameUpdate)
}

// VoteRestart records a restart vote. When every player on both sides has
// voted, the session resets and loops back to a fresh countdown.
func (m *Manager) VoteRestart(playerID string) error {
	s, err := m.sessionOf(playerID)
	if err != nil {
		return err
	}
	if s.Status != StatusFinished || s.restartGuard {
		return ErrGameNotFinished
	}
	if s.Sides[0].empty() || s.Sides[1].empty() {
		return ErrCannotRestartEmptySide
	}
	idx := s.sideOf(playerID)
	if idx < 0 {
		return ErrPlayerNotInGame
	}

	s.Sides[idx].votes[playerID] = struct{}{}

	if s.Sides[0].allVoted() && s.Sides[1].allVoted() {
		m.restart(s)
	}
	m.broadcast(s, protocol.EvtGameUpdate)
	return nil
}

// View answers a status query with the same projection a broadcast carries.
func (m *Manager) View(playerID string) (protocol.GameView, error) {
	s, err := m.sessionOf(playerID)
	if err != nil {
		return protocol.GameView{}, err
	}
	idx := s.sideOf(playerID)
	if idx < 0 {
		return protocol.GameView{}, ErrPlayerNotInGame
	}
	s.Sides[0].pruneVotes()
	s.Sides[1].pruneVotes()
	return s.viewFor(idx, m.cfg.WinThreshold), nil
}

// restart resets the contest in place and arms a fresh countdown. The guard
// stays up until the new countdown's first tick so a vote racing the
// transition cannot trigger a second restart.
func (m *Manager) restart(s *Session) {
	s.restartGuard = true
	s.Sides[0].reset()
	s.Sides[1].reset()
	s.Bar = 0
	s.Winner = -1
	s.Status = StatusCountdown
	s.CountdownRemaining = m.cfg.CountdownSeconds
	if s.reaper != nil {
		s.reaper.Stop()
		s.reaper = nil
	}
	m.log.Info("session restarting", "game", s.ID)
	m.armCountdown(s)
}

// finish moves the session to the win screen.
func (m *Manager) finish(s *Session, winner int) {
	s.Status = StatusFinished
	s.Winner = winner
	s.EndedAt = time.Now()
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}

	winnerTeam := s.Sides[winner].TeamID
	m.log.Info("session finished", "game", s.ID, "winner", winnerTeam, "bar", s.Bar)
	m.events.MatchFinished(s.ID, winnerTeam, s.Bar)

	if s.bothEmpty() {
		m.destroy(s)
		return
	}

	// Occupied finished sessions survive for restart votes, then get reaped.
	id := s.ID
	s.reaper = m.newTimer(m.cfg.FinishedSessionTTL, func() { m.reap(id) })
}

// armCountdown schedules the next one-second countdown tick.
func (m *Manager) armCountdown(s *Session) {
	id := s.ID
	s.countdown = m.newTimer(time.Second, func() { m.countdownTick(id) })
}

// countdownTick fires once per second while a session counts down. The
// session is re-fetched by id: it may have been destroyed, or moved out of
// the countdown, since the timer was armed - both make this a silent no-op.
func (m *Manager) countdownTick(sessionID string) {
	s, ok := m.sessions[sessionID]
	if !ok || s.Status != StatusCountdown {
		return
	}
	s.restartGuard = false

	s.CountdownRemaining--
	if s.CountdownRemaining > 0 {
		m.armCountdown(s)
		m.broadcast(s, protocol.EvtGameUpdate)
		return
	}

	s.Status = StatusActive
	s.CountdownRemaining = 0
	s.countdown = nil

	// Players may have left during the countdown; a side already empty at
	// the whistle forfeits immediately.
	if winner := m.winnerByForfeit(s); winner >= 0 {
		m.finish(s, winner)
	}
	m.broadcast(s, protocol.EvtGameUpdate)
}

// reap retires a finished session nobody restarted within the TTL. Re-fetch
// and state check as with any timer: a restart or destruction since arming
// makes this a no-op.
func (m *Manager) reap(sessionID string) {
	s, ok := m.sessions[sessionID]
	if !ok || s.Status != StatusFinished {
		return
	}
	m.log.Info("session reaped", "game", s.ID)
	left := protocol.New(protocol.EvtGameLeft, protocol.GameLeft{GameID: s.ID})
	for _, id := range s.participantIDs() {
		m.sender.Send(id, left)
	}
	m.destroy(s)
}

// destroy cancels the session's timers and drops it with all its index
// entries.
func (m *Manager) destroy(s *Session) {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
	if s.reaper != nil {
		s.reaper.Stop()
		s.reaper = nil
	}
	for _, id := range s.participantIDs() {
		delete(m.byPlayer, id)
	}
	delete(m.sessions, s.ID)
	m.log.Info("session destroyed", "game", s.ID)
}

// winnerByBar returns the side whose threshold the bar reached, or -1.
func (m *Manager) winnerByBar(s *Session) int {
	if s.Bar <= -m.cfg.WinThreshold {
		return 0
	}
	if s.Bar >= m.cfg.WinThreshold {
		return 1
	}
	return -1
}

// winnerByForfeit returns the non-empty side when its opponent emptied out,
// or -1. Losing players does not matter until the side has none left.
func (m *Manager) winnerByForfeit(s *Session) int {
	if s.Sides[0].empty() && !s.Sides[1].empty() {
		return 1
	}
	if s.Sides[1].empty() && !s.Sides[0].empty() {
		return 0
	}
	return -1
}

// sessionOf resolves a player to their session, cleaning a dangling index
// entry if the session is gone.
func (m *Manager) sessionOf(playerID string) (*Session, error) {
	id, ok := m.byPlayer[playerID]
	if !ok {
		return nil, ErrNotInGame
	}
	s, ok := m.sessions[id]
	if !ok {
		delete(m.byPlayer, playerID)
		return nil, ErrGameNotFound
	}
	return s, nil
}

// broadcast prunes stale votes, then sends every participant the session
// view annotated with which side is theirs.
func (m *Manager) broadcast(s *Session, kind string) {
	s.Sides[0].pruneVotes()
	s.Sides[1].pruneVotes()

	views := [2]protocol.Message{
		protocol.New(kind, s.viewFor(0, m.cfg.WinThreshold)),
		protocol.New(kind, s.viewFor(1, m.cfg.WinThreshold)),
	}
	for i, side := range s.Sides {
		for _, p := range side.players {
			m.sender.Send(p.id, views[i])
		}
	}
}
