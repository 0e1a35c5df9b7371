package network

import "github.com/aurora-0025/onam-game/internal/protocol"

// EventHandler is the seam between the network layer and the game logic.
// Every callback runs on the hub goroutine, so implementations may mutate
// shared state without locking.
type EventHandler interface {
	// OnConnect is called once a client finishes the websocket handshake.
	OnConnect(c *Client)

	// OnDisconnect is called after a client drops, before its send channel
	// is closed. Broadcasts to other clients are still safe here.
	OnDisconnect(c *Client)

	// OnMessage is called for every decoded message received from a client.
	OnMessage(c *Client, msg protocol.Message)
}
