package protocol

// --- Inbound payloads ---

// CreateTeamRequest is the payload of team:create.
type CreateTeamRequest struct {
	Name     string `json:"name"`     // display name of the creating player
	TeamName string `json:"teamName"` // display name of the new team
}

// JoinTeamRequest is the payload of team:join. InviteCode is the team id.
type JoinTeamRequest struct {
	Name       string `json:"name"`
	InviteCode string `json:"inviteCode"`
}

// --- Outbound payloads ---

// Welcome tells a freshly connected client its connection-scoped identifier.
type Welcome struct {
	PlayerID string `json:"playerId"`
}

type TeamCreated struct {
	TeamID string `json:"teamId"`
	Leader string `json:"leader"`
}

type TeamJoined struct {
	TeamID string `json:"teamId"`
	Leader string `json:"leader"`
}

type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeamSnapshot is the read-only projection answered to team:status.
type TeamSnapshot struct {
	TeamID   string       `json:"teamId"`
	Name     string       `json:"name"`
	Players  []PlayerInfo `json:"players"`
	LeaderID string       `json:"leaderId"`
	Queued   bool         `json:"queued"`
	Size     int          `json:"size"`
	MaxSize  int          `json:"maxSize"`
}

type TeamError struct {
	Message string `json:"message"`
}

type TeamLeft struct {
	TeamID string `json:"teamId"`
}

type PlayerJoined struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	TeamID     string `json:"teamId"`
}

type PlayerLeft struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName,omitempty"`
	TeamID     string `json:"teamId"`
}

type LeaderChanged struct {
	TeamID   string `json:"teamId"`
	LeaderID string `json:"leaderId"`
}

type MatchQueued struct {
	TeamID string `json:"teamId"`
	Size   int    `json:"size"`
}

type MatchCancelled struct {
	TeamID string `json:"teamId"`
	Reason string `json:"reason"`
}

type MatchError struct {
	Message string `json:"message"`
}

type GameError struct {
	Message string `json:"message"`
}

type GameLeft struct {
	GameID string `json:"gameId"`
}

// SidePlayer is one participant as seen on the wire.
type SidePlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Clicks int    `json:"clicks"`
}

// SideView is one half of a game session as seen on the wire.
type SideView struct {
	TeamID       string       `json:"teamId"`
	Name         string       `json:"name"`
	LeaderID     string       `json:"leaderId"`
	Players      []SidePlayer `json:"players"`
	Total        int          `json:"total"`
	RestartVotes []string     `json:"restartVotes"`
}

// GameView is the full session projection carried by game:started and
// game:update. The A/B labels are serialization artifacts; YourTeamIsA is the
// per-recipient annotation that makes them meaningful to a client.
type GameView struct {
	GameID             string   `json:"gameId"`
	SideA              SideView `json:"sideA"`
	SideB              SideView `json:"sideB"`
	BarPosition        int      `json:"barPosition"`
	WinThreshold       int      `json:"winThreshold"`
	Status             string   `json:"status"`
	Winner             string   `json:"winner,omitempty"`
	CountdownRemaining *int     `json:"countdownRemaining,omitempty"`
	YourTeamIsA        bool     `json:"yourTeamIsA"`
}
