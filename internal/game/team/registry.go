package team

import (
	"log/slog"

	"github.com/aurora-0025/onam-game/internal/game"
	"github.com/aurora-0025/onam-game/internal/protocol"
)

// Sender delivers a message to a single connected player. The network
// gateway implements it; tests use a recorder.
type Sender interface {
	Send(playerID string, msg protocol.Message)
}

// Matchmaker is the slice of the matchmaking queue the registry needs: teams
// enter it when their leader requests a match and must leave it whenever
// their composition changes.
type Matchmaker interface {
	Enqueue(t *Team)
	Dequeue(t *Team, reason string)
}

// Registry owns every team and the player-to-team index. All methods run on
// the hub goroutine.
type Registry struct {
	cfg    game.Config
	sender Sender
	queue  Matchmaker
	log    *slog.Logger

	teams    map[string]*Team  // team id -> team
	byPlayer map[string]string // player id -> team id
}

// NewRegistry builds an empty registry.
func NewRegistry(cfg game.Config, sender Sender, queue Matchmaker, log *slog.Logger) *Registry {
	return &Registry{
		cfg:      cfg,
		sender:   sender,
		queue:    queue,
		log:      log,
		teams:    make(map[string]*Team),
		byPlayer: make(map[string]string),
	}
}

// Create allocates a new single-member team led by its creator.
func (r *Registry) Create(playerID, playerName, teamName string) (*Team, error) {
	if _, ok := r.byPlayer[playerID]; ok {
		return nil, ErrAlreadyInTeam
	}

	id := newInviteCode()
	for r.teams[id] != nil {
		id = newInviteCode()
	}

	t := &Team{
		ID:       id,
		Name:     teamName,
		Members:  []*Player{{ID: playerID, Name: playerName}},
		LeaderID: playerID,
	}
	r.teams[id] = t
	r.byPlayer[playerID] = id

	r.log.Info("team created", "team", id, "name", teamName, "leader", playerID)
	return t, nil
}

// Join adds a player to an existing team. A queued team is dequeued first:
// its composition may not change while it waits in a bucket.
func (r *Registry) Join(playerID, playerName, teamID string) (*Team, error) {
	if _, ok := r.byPlayer[playerID]; ok {
		return nil, ErrAlreadyInTeam
	}
	t, ok := r.teams[teamID]
	if !ok {
		return nil, ErrTeamNotFound
	}
	if t.Size() >= r.cfg.MaxTeamSize {
		return nil, ErrTeamFull
	}

	if t.Queued {
		r.queue.Dequeue(t, "player joined")
	}

	r.broadcast(t, protocol.New(protocol.EvtTeamPlayerJoined, protocol.PlayerJoined{
		PlayerID:   playerID,
		PlayerName: playerName,
		TeamID:     t.ID,
	}))

	t.Members = append(t.Members, &Player{ID: playerID, Name: playerName})
	r.byPlayer[playerID] = t.ID

	r.log.Info("player joined team", "team", t.ID, "player", playerID, "size", t.Size())
	return t, nil
}

// Leave removes a player at their own request. Unlike Disconnect, the
// departing player is told the departure succeeded, even when the team is
// destroyed right after.
func (r *Registry) Leave(playerID string) {
	teamID := r.removePlayer(playerID)
	if teamID == "" {
		return
	}
	r.sender.Send(playerID, protocol.New(protocol.EvtTeamLeft, protocol.TeamLeft{TeamID: teamID}))
}

// Disconnect removes a player whose connection dropped. Same cleanup as
// Leave, but the departed identity is unreachable so nothing is sent to it.
func (r *Registry) Disconnect(playerID string) {
	r.removePlayer(playerID)
}

// removePlayer is the shared leave/disconnect path. It returns the id of the
// team left, or "" if the player was not in one.
func (r *Registry) removePlayer(playerID string) string {
	teamID, ok := r.byPlayer[playerID]
	if !ok {
		return ""
	}
	delete(r.byPlayer, playerID)

	t, ok := r.teams[teamID]
	if !ok {
		// Index pointed at a destroyed team; the delete above is the fix.
		return ""
	}

	if t.Queued {
		r.queue.Dequeue(t, "player left")
	}

	departed := t.remove(playerID)
	if departed == nil {
		return teamID
	}

	if t.Size() == 0 {
		delete(r.teams, teamID)
		r.log.Info("team destroyed", "team", teamID)
		return teamID
	}

	left := protocol.PlayerLeft{PlayerID: playerID, PlayerName: departed.Name, TeamID: teamID}
	r.broadcast(t, protocol.New(protocol.EvtTeamPlayerLeft, left))

	if t.LeaderID == playerID {
		t.LeaderID = t.Members[0].ID
		r.broadcast(t, protocol.New(protocol.EvtTeamLeaderChanged, protocol.LeaderChanged{
			TeamID:   teamID,
			LeaderID: t.LeaderID,
		}))
		r.log.Info("leader changed", "team", teamID, "leader", t.LeaderID)
	}
	return teamID
}

// Release drops a team whose players just moved into a game session. The
// session keeps its own snapshot; the team object and its index entries are
// discarded here.
func (r *Registry) Release(t *Team) {
	for _, p := range t.Members {
		delete(r.byPlayer, p.ID)
	}
	delete(r.teams, t.ID)
	r.log.Info("team released to match", "team", t.ID)
}

// RequestMatch puts the requester's team into the matchmaking queue. Leader
// only.
func (r *Registry) RequestMatch(playerID string) error {
	t, err := r.teamOf(playerID)
	if err != nil {
		return err
	}
	if t.LeaderID != playerID {
		return ErrNotLeader
	}
	if t.Queued {
		return ErrAlreadyQueued
	}
	if t.Size() > r.cfg.MaxTeamSize {
		return ErrTeamTooLarge
	}
	r.queue.Enqueue(t)
	return nil
}

// CancelMatch pulls the requester's team back out of the queue. Leader only.
func (r *Registry) CancelMatch(playerID string) error {
	t, err := r.teamOf(playerID)
	if err != nil {
		return err
	}
	if t.LeaderID != playerID {
		return ErrNotLeader
	}
	if !t.Queued {
		return ErrNotQueued
	}
	r.queue.Dequeue(t, "leader cancelled")
	return nil
}

// Status returns the read-only projection of the requester's team.
func (r *Registry) Status(playerID string) (protocol.TeamSnapshot, error) {
	t, err := r.teamOf(playerID)
	if err != nil {
		return protocol.TeamSnapshot{}, err
	}
	return t.Snapshot(r.cfg.MaxTeamSize), nil
}

// teamOf resolves a player to their team, cleaning up a dangling index entry
// if the team object is gone.
func (r *Registry) teamOf(playerID string) (*Team, error) {
	teamID, ok := r.byPlayer[playerID]
	if !ok {
		return nil, ErrNotInTeam
	}
	t, ok := r.teams[teamID]
	if !ok {
		delete(r.byPlayer, playerID)
		return nil, ErrTeamMissing
	}
	return t, nil
}

func (r *Registry) broadcast(t *Team, msg protocol.Message) {
	for _, p := range t.Members {
		r.sender.Send(p.ID, msg)
	}
}
