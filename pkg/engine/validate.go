package engine

import (
	"fmt"

	"github.com/yourusername/bbengine/internal/positionid"
)

// RuleOptions selects how strictly actions are validated.
//
// The zero value reproduces the reference rules: a ball action is accepted
// whenever its destination holds one of the side's blocks, and the
// ball-carrier check compares against the side's last block slot instead of
// the actual ball cell.
type RuleOptions struct {
	StrictBallPass    bool // require the destination to be in BallActions
	StrictBallCarrier bool // compare the moving block with the real ball cell
}

// ValidateAction checks whether side may take action a on b. It returns nil
// or an *InvalidActionError wrapping one of the Err* reasons.
//
// Block actions are checked in this order: bounds, knight offset, ball
// carrier, occupied destination.
func ValidateAction(b Board, side Side, a Action, rules RuleOptions) error {
	invalid := func(err error) error {
		return &InvalidActionError{Side: side, Action: a, Err: err}
	}

	if !side.Valid() {
		return invalid(fmt.Errorf("%w: side %d", ErrUnknownPiece, int(side)))
	}
	if a.Index < 0 || a.Index > BallIndex {
		return invalid(ErrUnknownPiece)
	}

	if a.IsBall() {
		if !b.onOwnBlock(side, a.Cell) {
			return invalid(ErrBallTargetInvalid)
		}
		if rules.StrictBallPass && !containsInt(BallActions(b, side), a.Cell) {
			return invalid(fmt.Errorf("%w: no clear passing line", ErrBallTargetInvalid))
		}
		return nil
	}

	to := positionid.DecodeCoord(a.Cell)
	if !to.InBounds() {
		return invalid(ErrOutOfBounds)
	}

	blocks := sideBlocks[side]
	from := b.coords[blocks[a.Index]]
	if !isKnightDelta(from, to) {
		return invalid(ErrNotAKnightMove)
	}

	carrier := b.coords[blocks[len(blocks)-1]]
	if rules.StrictBallCarrier {
		carrier = b.coords[ballSlots[side]]
	}
	if from == carrier {
		return invalid(ErrBallCarrierImmobile)
	}

	if b.occupied(a.Cell) {
		return invalid(ErrDestinationOccupied)
	}
	return nil
}
