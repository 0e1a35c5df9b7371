package network

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aurora-0025/onam-game/internal/protocol"
)

// Server upgrades HTTP requests to websocket connections and feeds them into
// a Hub.
type Server struct {
	hub *Hub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The game is served to browser clients from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewServer wires the given game logic into a new server. The handler is the
// injection point for everything above the transport.
func NewServer(handler EventHandler) *Server {
	return &Server{hub: NewHub(handler)}
}

// Dispatch schedules fn onto the hub goroutine. See Hub.Dispatch.
func (s *Server) Dispatch(fn func()) {
	s.hub.Dispatch(fn)
}

// wsHandler promotes the HTTP request to a websocket connection and starts
// the client's pump goroutines.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		conn: conn,
		hub:  s.hub,
		send: make(chan protocol.Message, 256),
	}
	client.hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}

// Run starts the hub goroutine and serves websocket connections on /ws until
// ctx is cancelled, then shuts the HTTP listener down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.wsHandler)

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr, "path", "/ws")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
