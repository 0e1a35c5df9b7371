// A self-driving client for smoke-testing and load-testing the server: it
// creates (or joins) a team, queues for a match, clicks through the game and
// optionally votes to restart. Run two of them against a local server to
// watch a full 1v1 play out.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"

	"github.com/aurora-0025/onam-game/internal/protocol"
)

var (
	addr     = flag.String("addr", "ws://localhost:8080/ws", "server websocket URL")
	name     = flag.String("name", "bot", "player display name")
	teamName = flag.String("team", "bots", "team name to create (ignored with -invite)")
	invite   = flag.String("invite", "", "join this invite code instead of creating a team")
	clickHz  = flag.Int("hz", 10, "clicks per second while the game is active")
	restart  = flag.Bool("restart", false, "vote to restart after each finished game")
)

var (
	info = color.New(color.FgCyan)
	good = color.New(color.FgGreen, color.Bold)
	bad  = color.New(color.FgRed, color.Bold)
)

func main() {
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	msgs := make(chan protocol.Message)
	go func() {
		defer close(msgs)
		for {
			var msg protocol.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			msgs <- msg
		}
	}()

	send := func(kind string, payload any) {
		if err := conn.WriteJSON(protocol.New(kind, payload)); err != nil {
			log.Fatalf("write %s: %v", kind, err)
		}
	}

	clicking := false
	voted := false
	ticker := time.NewTicker(time.Second / time.Duration(*clickHz))
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				info.Println("connection closed")
				return
			}
			switch msg.Type {
			case protocol.EvtWelcome:
				if *invite != "" {
					info.Printf("joining team %s as %q\n", *invite, *name)
					send(protocol.EvtTeamJoin, protocol.JoinTeamRequest{Name: *name, InviteCode: *invite})
				} else {
					info.Printf("creating team %q as %q\n", *teamName, *name)
					send(protocol.EvtTeamCreate, protocol.CreateTeamRequest{Name: *name, TeamName: *teamName})
				}

			case protocol.EvtTeamCreated:
				var created protocol.TeamCreated
				json.Unmarshal(msg.Payload, &created)
				good.Printf("team up, invite code: %s\n", created.TeamID)
				send(protocol.EvtTeamMatchStart, nil)

			case protocol.EvtTeamJoined:
				good.Println("joined team, waiting for the leader to queue")

			case protocol.EvtTeamMatchQueued:
				info.Println("queued, waiting for an opponent...")

			case protocol.EvtTeamMatchCancelled:
				var cancelled protocol.MatchCancelled
				json.Unmarshal(msg.Payload, &cancelled)
				bad.Printf("match cancelled: %s\n", cancelled.Reason)

			case protocol.EvtGameStarted, protocol.EvtGameUpdate:
				var view protocol.GameView
				json.Unmarshal(msg.Payload, &view)
				switch view.Status {
				case "countdown":
					if view.CountdownRemaining != nil {
						info.Printf("starting in %d...\n", *view.CountdownRemaining)
					}
					clicking, voted = false, false
				case "active":
					clicking = true
				case "finished":
					clicking = false
					won := (view.Winner == "A") == view.YourTeamIsA
					if won {
						good.Printf("we won! bar=%d\n", view.BarPosition)
					} else {
						bad.Printf("we lost. bar=%d\n", view.BarPosition)
					}
					if *restart && !voted {
						voted = true
						info.Println("voting to restart")
						send(protocol.EvtGameRestart, nil)
					}
				}

			case protocol.EvtGameLeft:
				info.Println("game over, back to the lobby")
				return

			case protocol.EvtTeamError, protocol.EvtTeamMatchError, protocol.EvtGameError:
				bad.Printf("%s: %s\n", msg.Type, string(msg.Payload))
			}

		case <-ticker.C:
			if clicking {
				send(protocol.EvtGameClick, nil)
			}
		}
	}
}
