// Package protocol defines the wire format shared by the server and its
// clients: a small tagged envelope plus the closed set of event kinds and
// their payload shapes. Everything that crosses a websocket goes through
// this package, so the rest of the server never handles raw JSON.
package protocol

import "encoding/json"

// Message is the envelope for all client/server communication. Type routes
// the message; Payload carries the kind-specific data, kept raw so each
// handler decodes only the shape it expects.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound event kinds (client -> server).
const (
	EvtTeamCreate      = "team:create"
	EvtTeamJoin        = "team:join"
	EvtTeamLeave       = "team:leave"
	EvtTeamMatchStart  = "team:match:start"
	EvtTeamMatchCancel = "team:match:cancel"
	EvtTeamStatus      = "team:status"
	EvtGameClick       = "game:click"
	EvtGameLeave       = "game:leave"
	EvtGameRestart     = "game:restart"
	EvtGameStatus      = "game:status"
)

// Outbound event kinds (server -> client).
const (
	EvtWelcome            = "server:welcome"
	EvtTeamCreated        = "team:created"
	EvtTeamJoined         = "team:joined"
	EvtTeamSnapshot       = "team:status"
	EvtTeamError          = "team:error"
	EvtTeamLeft           = "team:left"
	EvtTeamPlayerJoined   = "team:playerJoined"
	EvtTeamPlayerLeft     = "team:playerLeft"
	EvtTeamLeaderChanged  = "team:leaderChanged"
	EvtTeamMatchQueued    = "team:match:queued"
	EvtTeamMatchCancelled = "team:match:cancelled"
	EvtTeamMatchError     = "team:match:error"
	EvtGameStarted        = "game:started"
	EvtGameUpdate         = "game:update"
	EvtGameError          = "game:error"
	EvtGameLeft           = "game:left"
)

// New builds a Message of the given kind around an already-validated payload
// value. Payload structs in this package always marshal cleanly, so the
// marshal error is discarded.
func New(kind string, payload any) Message {
	if payload == nil {
		return Message{Type: kind}
	}
	raw, _ := json.Marshal(payload)
	return Message{Type: kind, Payload: raw}
}
