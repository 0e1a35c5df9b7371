package team

import "errors"

// Precondition violations surfaced to the requesting player as team:error or
// team:match:error events. None of these mutate state beyond cleaning a
// stale index entry.
var (
	ErrAlreadyInTeam = errors.New("already in a team")
	ErrTeamNotFound  = errors.New("team not found")
	ErrTeamFull      = errors.New("team is full")
	ErrNotInTeam     = errors.New("not in a team")

	// ErrTeamMissing means the player index pointed at a team that no longer
	// exists. Defensive: treated like any other precondition failure, and
	// the dangling index entry is dropped.
	ErrTeamMissing = errors.New("team record missing")

	ErrNotLeader     = errors.New("only the team leader can do that")
	ErrAlreadyQueued = errors.New("team is already queued for a match")
	ErrNotQueued     = errors.New("team is not queued")
	ErrTeamTooLarge  = errors.New("team exceeds the maximum size")
)
