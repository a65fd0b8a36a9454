package engine

import (
	"errors"
	"fmt"
)

// Reasons an action is rejected. Any of them forfeits the game for the
// side that proposed the action.
var (
	ErrOutOfBounds         = errors.New("out of bounds")
	ErrNotAKnightMove      = errors.New("not a knight move")
	ErrBallCarrierImmobile = errors.New("piece is ball carrier")
	ErrDestinationOccupied = errors.New("destination occupied")
	ErrBallTargetInvalid   = errors.New("ball target not on own piece")
	ErrUnknownPiece        = errors.New("unknown piece index")
)

// ErrRoundLimit is returned by Game.Run when EngineOptions.MaxRounds is hit
// before the game ends.
var ErrRoundLimit = errors.New("round limit reached")

// InvalidActionError reports an illegal action together with who proposed it.
type InvalidActionError struct {
	Side   Side
	Action Action
	Err    error
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("%s action %s: %v", e.Side.Name(), e.Action, e.Err)
}

func (e *InvalidActionError) Unwrap() error {
	return e.Err
}

// IsInvalidAction reports whether err rejects an action.
func IsInvalidAction(err error) bool {
	var iae *InvalidActionError
	return errors.As(err, &iae)
}
