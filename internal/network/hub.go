package network

import "github.com/aurora-0025/onam-game/internal/protocol"

// clientMessage pairs an inbound message with the client that sent it.
type clientMessage struct {
	client *Client
	msg    protocol.Message
}

// Hub owns the set of active clients and serializes every event - connect,
// disconnect, inbound message, scheduled task - onto a single goroutine.
// That goroutine is the server's one logical thread of control: handlers run
// to completion without interleaving, so the game state needs no locks.
type Hub struct {
	// Registered clients. Touched only by the hub goroutine.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	incoming   chan clientMessage

	// tasks carries closures scheduled from outside the loop (timer
	// callbacks, mostly) back onto the hub goroutine.
	tasks chan func()

	handler EventHandler
}

// NewHub creates a Hub that routes events to the given handler.
func NewHub(handler EventHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		tasks:      make(chan func(), 64),
		handler:    handler,
	}
}

// Dispatch schedules fn to run on the hub goroutine. It is the only safe way
// for a timer callback to touch game state.
func (h *Hub) Dispatch(fn func()) {
	h.tasks <- fn
}

// Run processes hub events until the process exits. Must run on its own
// goroutine; everything it calls runs single-threaded.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.handler.OnConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// Let the handler clean up (and broadcast to survivors)
				// before the send channel closes.
				h.handler.OnDisconnect(client)
				close(client.send)
			}

		case cm := <-h.incoming:
			h.handler.OnMessage(cm.client, cm.msg)

		case fn := <-h.tasks:
			fn()
		}
	}
}
