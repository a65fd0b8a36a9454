package engine

import "fmt"

// Action moves one of a side's pieces. Index 0-4 selects a block, BallIndex
// selects the ball. Cell is the absolute destination cell.
type Action struct {
	Index int `json:"index"`
	Cell  int `json:"cell"`
}

// IsBall reports whether the action passes the ball.
func (a Action) IsBall() bool {
	return a.Index == BallIndex
}

// String formats the action as "(index,cell)".
func (a Action) String() string {
	return fmt.Sprintf("(%d,%d)", a.Index, a.Cell)
}

// GenerateActions returns every action side may take on b: the knight jumps
// of its five blocks followed by its ball passes. It returns nil unless side
// is White or Black.
func GenerateActions(b Board, side Side) []Action {
	if !side.Valid() {
		return nil
	}
	actions := make([]Action, 0, 16)
	for i, slot := range sideBlocks[side] {
		for _, c := range BlockActions(b, slot) {
			actions = append(actions, Action{Index: i, Cell: c})
		}
	}
	for _, c := range BallActions(b, side) {
		actions = append(actions, Action{Index: BallIndex, Cell: c})
	}
	return actions
}

// ApplyAction writes the action's destination into the acting piece's slot.
// The action is assumed to have been validated.
func ApplyAction(b *Board, side Side, a Action) {
	b.Update(Slot(side, a.Index), a.Cell)
}

// ContainsAction reports whether a is in actions.
func ContainsAction(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
