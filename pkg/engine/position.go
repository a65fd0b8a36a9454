// Package engine provides the public API for the block-and-ball rules engine.
package engine

import (
	"fmt"
	"strings"

	"github.com/yourusername/bbengine/internal/positionid"
)

// Side identifies a player. White moves on even rounds, Black on odd rounds.
type Side int

const (
	NoSide Side = iota - 1
	White
	Black
)

// String returns the winner label used in game results.
func (s Side) String() string {
	switch s {
	case White:
		return "WHITE"
	case Black:
		return "BLACK"
	}
	return "NONE"
}

// Name returns the capitalised display name ("White", "Black").
func (s Side) Name() string {
	switch s {
	case White:
		return "White"
	case Black:
		return "Black"
	}
	return "Nobody"
}

// ParseSide reads a side from "white"/"black" (any case), "0"/"1", or
// "none".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w", "0":
		return White, nil
	case "black", "b", "1":
		return Black, nil
	case "none", "":
		return NoSide, nil
	}
	return NoSide, fmt.Errorf("unknown side %q", s)
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// Valid reports whether s is White or Black.
func (s Side) Valid() bool {
	return s == White || s == Black
}

// Slot layout of a position vector
var (
	sideBlocks = [2][5]int{{0, 1, 2, 3, 4}, {6, 7, 8, 9, 10}}
	ballSlots  = [2]int{5, 11}
	allBlocks  = [10]int{0, 1, 2, 3, 4, 6, 7, 8, 9, 10}
)

// BallIndex is the relative index that selects a side's ball in an Action.
const BallIndex = 5

// BlockSlots returns the absolute slots of a side's five blocks.
// side must be White or Black.
func BlockSlots(side Side) [5]int {
	return sideBlocks[side]
}

// BallSlot returns the absolute slot of a side's ball.
// side must be White or Black.
func BallSlot(side Side) int {
	return ballSlots[side]
}

// Slot converts a relative piece index of side to an absolute slot.
func Slot(side Side, index int) int {
	return int(side)*6 + index
}

// Snapshot is a decoded position handed to players. It is an array, so
// every snapshot is an independent copy of the engine's state.
type Snapshot [positionid.NumSlots]positionid.Coord

// Board is the 12-slot position vector together with its decoded cache.
// Board is a value type: assigning it copies the whole position.
type Board struct {
	cells  positionid.Cells
	coords Snapshot
}

// StartingPosition returns the position every game starts from.
func StartingPosition() Board {
	return NewBoard(positionid.Cells{1, 2, 3, 4, 5, 3, 50, 51, 52, 53, 54, 52})
}

// NewBoard builds a board from a position vector. The result is not
// checked; call IsValid when that matters.
func NewBoard(cells positionid.Cells) Board {
	var b Board
	for slot, c := range cells {
		b.Update(slot, c)
	}
	return b
}

// ParseBoard reads a board from a position ID or a comma separated list of
// 12 cells. The board is not checked for validity.
func ParseBoard(s string) (Board, error) {
	cells, err := positionid.Parse(s)
	if err != nil {
		return Board{}, err
	}
	return NewBoard(cells), nil
}

// BoardFromSnapshot rebuilds a board from a decoded snapshot.
func BoardFromSnapshot(s Snapshot) Board {
	var cells positionid.Cells
	for slot, c := range s {
		cells[slot] = c.Cell()
	}
	return NewBoard(cells)
}

// Update writes cell into slot and refreshes the decoded entry.
// No validity check is performed.
func (b *Board) Update(slot, cell int) {
	b.cells[slot] = cell
	b.coords[slot] = positionid.DecodeCoord(cell)
}

// Cell returns the cell index held by slot.
func (b Board) Cell(slot int) int {
	return b.cells[slot]
}

// Coord returns the decoded cell held by slot.
func (b Board) Coord(slot int) positionid.Coord {
	return b.coords[slot]
}

// Cells returns a copy of the position vector.
func (b Board) Cells() positionid.Cells {
	return b.cells
}

// Snapshot returns a copy of the decoded position.
func (b Board) Snapshot() Snapshot {
	return b.coords
}

// PositionID returns the position ID of the board.
func (b Board) PositionID() string {
	return positionid.PositionID(b.cells)
}

// Key returns the compact key of the board.
func (b Board) Key() positionid.Key {
	return positionid.MakeKey(b.cells)
}

// BallCell returns the cell of side's ball, or -1 for an invalid side.
func (b Board) BallCell(side Side) int {
	if !side.Valid() {
		return -1
	}
	return b.cells[ballSlots[side]]
}

// IsValid checks the board invariants:
//  1. every slot decodes to a cell on the board
//  2. no two blocks share a cell
//  3. each ball sits on one of its own side's blocks
func (b Board) IsValid() bool {
	for _, c := range b.coords {
		if !c.InBounds() {
			return false
		}
	}

	for i, s := range allBlocks {
		for _, t := range allBlocks[i+1:] {
			if b.cells[s] == b.cells[t] {
				return false
			}
		}
	}

	for side := White; side <= Black; side++ {
		if !b.onOwnBlock(side, b.cells[ballSlots[side]]) {
			return false
		}
	}
	return true
}

// onOwnBlock reports whether cell is occupied by one of side's blocks.
func (b Board) onOwnBlock(side Side, cell int) bool {
	for _, s := range sideBlocks[side] {
		if b.cells[s] == cell {
			return true
		}
	}
	return false
}

// occupied reports whether any block of either side is on cell.
func (b Board) occupied(cell int) bool {
	for _, s := range allBlocks {
		if b.cells[s] == cell {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a valid board has White's ball on the last row
// or Black's ball on the first row. Invalid boards are never terminal.
func (b Board) IsTerminal() bool {
	whiteWins := b.coords[ballSlots[White]].Row == positionid.NumRows-1
	blackWins := b.coords[ballSlots[Black]].Row == 0
	return b.IsValid() && (whiteWins || blackWins)
}

// Winner returns the side whose ball has reached its goal row on a
// terminal board. White is checked first.
func (b Board) Winner() (Side, bool) {
	if !b.IsTerminal() {
		return NoSide, false
	}
	if b.coords[ballSlots[White]].Row == positionid.NumRows-1 {
		return White, true
	}
	return Black, true
}

// EqualBoards returns true if two boards hold the same position
func EqualBoards(b1, b2 Board) bool {
	return b1.cells == b2.cells
}
