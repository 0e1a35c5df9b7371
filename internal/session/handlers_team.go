package session

import (
	"encoding/json"

	"github.com/aurora-0025/onam-game/internal/protocol"
)

func (g *Gateway) registerTeamHandlers() {
	g.router[protocol.EvtTeamCreate] = handleTeamCreate
	g.router[protocol.EvtTeamJoin] = handleTeamJoin
	g.router[protocol.EvtTeamLeave] = handleTeamLeave
	g.router[protocol.EvtTeamStatus] = handleTeamStatus
	g.router[protocol.EvtTeamMatchStart] = handleMatchStart
	g.router[protocol.EvtTeamMatchCancel] = handleMatchCancel
}

func handleTeamCreate(g *Gateway, c conn, payload json.RawMessage) {
	var req protocol.CreateTeamRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.Name == "" || req.TeamName == "" {
		g.sendError(c.ID(), protocol.EvtTeamCreate, "team:create needs a player name and a team name")
		return
	}

	t, err := g.registry.Create(c.ID(), req.Name, req.TeamName)
	if err != nil {
		g.sendError(c.ID(), protocol.EvtTeamCreate, err.Error())
		return
	}
	g.Send(c.ID(), protocol.New(protocol.EvtTeamCreated, protocol.TeamCreated{
		TeamID: t.ID,
		Leader: t.LeaderID,
	}))
}

func handleTeamJoin(g *Gateway, c conn, payload json.RawMessage) {
	var req protocol.JoinTeamRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.Name == "" || req.InviteCode == "" {
		g.sendError(c.ID(), protocol.EvtTeamJoin, "team:join needs a player name and an invite code")
		return
	}

	t, err := g.registry.Join(c.ID(), req.Name, req.InviteCode)
	if err != nil {
		g.sendError(c.ID(), protocol.EvtTeamJoin, err.Error())
		return
	}
	g.Send(c.ID(), protocol.New(protocol.EvtTeamJoined, protocol.TeamJoined{
		TeamID: t.ID,
		Leader: t.LeaderID,
	}))
}

func handleTeamLeave(g *Gateway, c conn, payload json.RawMessage) {
	// No-op when the player has no team; Leave confirms with team:left
	// otherwise.
	g.registry.Leave(c.ID())
}

func handleTeamStatus(g *Gateway, c conn, payload json.RawMessage) {
	snap, err := g.registry.Status(c.ID())
	if err != nil {
		g.sendError(c.ID(), protocol.EvtTeamStatus, err.Error())
		return
	}
	g.Send(c.ID(), protocol.New(protocol.EvtTeamSnapshot, snap))
}

func handleMatchStart(g *Gateway, c conn, payload json.RawMessage) {
	if err := g.registry.RequestMatch(c.ID()); err != nil {
		g.sendError(c.ID(), protocol.EvtTeamMatchStart, err.Error())
	}
}

func handleMatchCancel(g *Gateway, c conn, payload json.RawMessage) {
	if err := g.registry.CancelMatch(c.ID()); err != nil {
		g.sendError(c.ID(), protocol.EvtTeamMatchCancel, err.Error())
	}
}
