package arena

import "errors"

// Precondition violations surfaced to the requesting player as game:error
// events. None are fatal and none mutate session state.
var (
	ErrNotInGame = errors.New("not in a game")

	// ErrGameNotFound means the player index pointed at a session that no
	// longer exists. Defensive: the dangling entry is dropped and the
	// requester gets the same treatment as any precondition failure.
	ErrGameNotFound = errors.New("game record missing")

	// ErrPlayerNotInGame means a session was found for the player but
	// neither side holds them. Should be unreachable given the index.
	ErrPlayerNotInGame = errors.New("player not on either side")

	ErrGameNotActive          = errors.New("game is not active")
	ErrGameNotFinished        = errors.New("game is not finished")
	ErrCannotRestartEmptySide = errors.New("cannot restart with an empty side")
)
