// Package events publishes match telemetry over NATS. The stream is
// write-only: outside consumers (dashboards, bots) may subscribe, but the
// server never reads game state back from it.
package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectMatchStarted  = "onam.match.started"
	SubjectMatchFinished = "onam.match.finished"
)

// MatchEvent is the JSON body published on both subjects.
type MatchEvent struct {
	GameID      string    `json:"gameId"`
	TeamA       string    `json:"teamA,omitempty"`
	TeamB       string    `json:"teamB,omitempty"`
	WinnerTeam  string    `json:"winnerTeam,omitempty"`
	BarPosition int       `json:"barPosition,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher emits match events to NATS. Publishing is best-effort: a failed
// publish is logged and dropped, never surfaced to gameplay.
type Publisher struct {
	nc  *nats.Conn
	log *slog.Logger
}

// Connect dials NATS and returns a ready publisher.
func Connect(url string, log *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("onam-game-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, log: log}, nil
}

func (p *Publisher) MatchStarted(gameID, teamA, teamB string) {
	p.publish(SubjectMatchStarted, MatchEvent{
		GameID:    gameID,
		TeamA:     teamA,
		TeamB:     teamB,
		Timestamp: time.Now(),
	})
}

func (p *Publisher) MatchFinished(gameID, winnerTeam string, barPosition int) {
	p.publish(SubjectMatchFinished, MatchEvent{
		GameID:      gameID,
		WinnerTeam:  winnerTeam,
		BarPosition: barPosition,
		Timestamp:   time.Now(),
	})
}

func (p *Publisher) publish(subject string, ev MatchEvent) {
	data, _ := json.Marshal(ev)
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.Warn("event publish failed", "subject", subject, "err", err)
	}
}

// Close drains the connection.
func (p *Publisher) Close() {
	p.nc.Drain()
}

// Noop satisfies the manager's Publisher seam when no NATS URL is
// configured.
type Noop struct{}

func (Noop) MatchStarted(gameID, teamA, teamB string) {}

func (Noop) MatchFinished(gameID, winnerTeam string, barPos int) {}
