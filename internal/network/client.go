package network

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aurora-0025/onam-game/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to the peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Client represents one connected player from the server's point of view.
// Its ID is the connection-scoped identity the game logic keys everything on:
// unique, stable for the lifetime of the connection, gone when it drops.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *Hub

	// Buffered channel of outbound messages. The hub goroutine writes here,
	// the client's writeLoop drains it onto the wire; the buffer keeps a slow
	// client from stalling the hub.
	send chan protocol.Message
}

// ID returns the connection-scoped player identifier.
func (c *Client) ID() string {
	return c.id
}

// Send returns the outbound channel for this client.
func (c *Client) Send() chan<- protocol.Message {
	return c.send
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("unexpected close", "player", c.id, "err", err)
			}
			break
		}
		c.hub.incoming <- clientMessage{client: c, msg: msg}
	}
}

// writeLoop pumps messages from the send channel to the websocket connection
// and keeps the connection alive with periodic pings.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel: the client was unregistered.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Warn("write failed", "player", c.id, "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
