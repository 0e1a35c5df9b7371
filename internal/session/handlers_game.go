package session

import (
	"encoding/json"

	"github.com/aurora-0025/onam-game/internal/protocol"
)

func (g *Gateway) registerGameHandlers() {
	g.router[protocol.EvtGameClick] = handleGameClick
	g.router[protocol.EvtGameLeave] = handleGameLeave
	g.router[protocol.EvtGameRestart] = handleGameRestart
	g.router[protocol.EvtGameStatus] = handleGameStatus
}

func handleGameClick(g *Gateway, c conn, payload json.RawMessage) {
	if err := g.arena.Click(c.ID()); err != nil {
		g.sendError(c.ID(), protocol.EvtGameClick, err.Error())
	}
}

func handleGameLeave(g *Gateway, c conn, payload json.RawMessage) {
	if err := g.arena.Leave(c.ID()); err != nil {
		g.sendError(c.ID(), protocol.EvtGameLeave, err.Error())
	}
}

func handleGameRestart(g *Gateway, c conn, payload json.RawMessage) {
	if err := g.arena.VoteRestart(c.ID()); err != nil {
		g.sendError(c.ID(), protocol.EvtGameRestart, err.Error())
	}
}

func handleGameStatus(g *Gateway, c conn, payload json.RawMessage) {
	view, err := g.arena.View(c.ID())
	if err != nil {
		g.sendError(c.ID(), protocol.EvtGameStatus, err.Error())
		return
	}
	g.Send(c.ID(), protocol.New(protocol.EvtGameUpdate, view))
}
