package game

import "errors"

// Rule errors returned by the engine. Each one is recoverable at the
// request layer: the session state is left unchanged when any of these
// is returned.
var (
	ErrInvalidSelection = errors.New("invalid city, character or player name")
	ErrNotStarted       = errors.New("game not started")
	ErrGameOver         = errors.New("game is over")
	ErrNoActiveRiddle   = errors.New("no active riddle")
	ErrAlreadySolved    = errors.New("riddle already solved")
	ErrNoActiveEvent    = errors.New("no active event")
	ErrInvalidChoice    = errors.New("invalid event choice")
)
