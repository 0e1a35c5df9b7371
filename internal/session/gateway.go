// Package session is the gateway between the network layer and the game
// core: it tracks which connection is which player, validates inbound
// payload shapes, routes events to the team registry and session manager,
// and translates their errors back into scoped error events.
package session

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/aurora-0025/onam-game/internal/game"
	"github.com/aurora-0025/onam-game/internal/game/arena"
	"github.com/aurora-0025/onam-game/internal/game/match"
	"github.com/aurora-0025/onam-game/internal/game/team"
	"github.com/aurora-0025/onam-game/internal/network"
	"github.com/aurora-0025/onam-game/internal/protocol"
)

// conn is the slice of network.Client the gateway needs. Tests substitute a
// fake; the network layer provides the real thing.
type conn interface {
	ID() string
	Send() chan<- protocol.Message
}

// commandFunc handles one inbound event kind.
type commandFunc func(g *Gateway, c conn, payload json.RawMessage)

// Gateway implements network.EventHandler. Every method runs on the hub
// goroutine.
type Gateway struct {
	cfg game.Config
	log *slog.Logger

	registry *team.Registry
	arena    *arena.Manager

	clients map[string]conn // player id -> connection
	router  map[string]commandFunc
}

// NewGateway wires the full core together: manager, queue, registry and the
// routing table. dispatch must marshal closures onto the hub goroutine; it
// may close over state that is assigned before the server starts.
func NewGateway(cfg game.Config, events arena.Publisher, dispatch func(func()), log *slog.Logger) *Gateway {
	g := &Gateway{
		cfg:     cfg,
		log:     log,
		clients: make(map[string]conn),
		router:  make(map[string]commandFunc),
	}
	g.arena = arena.NewManager(cfg, g, events, dispatch, log)

	// The factory bridges the queue to the session manager. Matched teams
	// are released from the registry: the session owns its own snapshot and
	// the team objects are not reused.
	var registry *team.Registry
	queue := match.NewQueue(g, func(a, b *team.Team) {
		registry.Release(a)
		registry.Release(b)
		g.arena.StartMatch(a, b)
	}, log)
	registry = team.NewRegistry(cfg, g, queue, log)
	g.registry = registry

	g.registerTeamHandlers()
	g.registerGameHandlers()
	return g
}

// --- network.EventHandler ---

func (g *Gateway) OnConnect(c *network.Client) { g.connect(c) }

func (g *Gateway) OnDisconnect(c *network.Client) { g.disconnect(c) }

func (g *Gateway) OnMessage(c *network.Client, msg protocol.Message) { g.handle(c, msg) }

func (g *Gateway) connect(c conn) {
	g.clients[c.ID()] = c
	g.log.Info("player connected", "player", c.ID(), "online", len(g.clients))
	g.Send(c.ID(), protocol.New(protocol.EvtWelcome, protocol.Welcome{PlayerID: c.ID()}))
}

// disconnect runs the same cleanup paths as an explicit leave. The player is
// in at most one of registry or arena; each no-ops when it does not hold
// them, and neither sends anything to the departed identity.
func (g *Gateway) disconnect(c conn) {
	delete(g.clients, c.ID())
	g.registry.Disconnect(c.ID())
	g.arena.Disconnect(c.ID())
	g.log.Info("player disconnected", "player", c.ID(), "online", len(g.clients))
}

func (g *Gateway) handle(c conn, msg protocol.Message) {
	handler, ok := g.router[msg.Type]
	if !ok {
		g.sendError(c.ID(), msg.Type, "unknown event: "+msg.Type)
		return
	}
	handler(g, c, msg.Payload)
}

// Send delivers a message to a connected player, dropping it if the player
// is gone or their outbound buffer is full. A blocked send here would stall
// the hub goroutine for everyone.
func (g *Gateway) Send(playerID string, msg protocol.Message) {
	c, ok := g.clients[playerID]
	if !ok {
		return
	}
	select {
	case c.Send() <- msg:
	default:
		g.log.Warn("outbound buffer full, dropping", "player", playerID, "type", msg.Type)
	}
}

// sendError picks the error event family matching the inbound kind.
func (g *Gateway) sendError(playerID, inboundKind, message string) {
	switch {
	case strings.HasPrefix(inboundKind, "game:"):
		g.Send(playerID, protocol.New(protocol.EvtGameError, protocol.GameError{Message: message}))
	case strings.HasPrefix(inboundKind, "team:match:"):
		g.Send(playerID, protocol.New(protocol.EvtTeamMatchError, protocol.MatchError{Message: message}))
	default:
		g.Send(playerID, protocol.New(protocol.EvtTeamError, protocol.TeamError{Message: message}))
	}
}
