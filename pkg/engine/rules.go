package engine

import (
	"sort"

	"github.com/yourusername/bbengine/internal/positionid"
)

// knightDeltas are the eight (col, row) offsets a block may jump by.
var knightDeltas = [8]positionid.Coord{
	{Col: 2, Row: 1}, {Col: 1, Row: 2}, {Col: -2, Row: 1}, {Col: 1, Row: -2},
	{Col: -1, Row: 2}, {Col: 2, Row: -1}, {Col: -1, Row: -2}, {Col: -2, Row: -1},
}

// isKnightDelta reports whether from->to is one of the knight offsets.
func isKnightDelta(from, to positionid.Coord) bool {
	dc, dr := abs(from.Col-to.Col), abs(from.Row-to.Row)
	return (dc == 2 && dr == 1) || (dc == 1 && dr == 2)
}

// BlockActions returns the cells the block in slot can move to, ascending.
//
// A block carrying either ball cannot move. Every other candidate knight
// jump that stays on the board is tried on a scratch copy of the board and
// kept only if the copy is still valid, which rejects occupied cells and
// jumps that would leave a ball without a block under it.
func BlockActions(b Board, slot int) []int {
	cell := b.cells[slot]
	if cell == b.cells[ballSlots[White]] || cell == b.cells[ballSlots[Black]] {
		return nil
	}

	from := b.coords[slot]
	moves := make([]int, 0, len(knightDeltas))
	for _, d := range knightDeltas {
		to := positionid.Coord{Col: from.Col + d.Col, Row: from.Row + d.Row}
		if !to.InBounds() {
			continue
		}
		probe := b
		probe.Update(slot, to.Cell())
		if probe.IsValid() {
			moves = append(moves, to.Cell())
		}
	}
	sort.Ints(moves)
	return moves
}

// opponents returns the decoded cells of the blocks that can intercept a
// pass made by side.
func (b Board) opponents(side Side) [5]positionid.Coord {
	var opp [5]positionid.Coord
	for i, s := range sideBlocks[side.Opponent()] {
		opp[i] = b.coords[s]
	}
	return opp
}

// CanPass reports whether side can pass its ball from cell `from` to cell
// `to` in a single straight line without an opposing block strictly between.
func CanPass(b Board, side Side, from, to int) bool {
	opp := b.opponents(side)
	return clearLine(opp[:], positionid.DecodeCoord(from), positionid.DecodeCoord(to))
}

// clearLine checks the column, row and diagonal cases in that order.
func clearLine(opp []positionid.Coord, a, c positionid.Coord) bool {
	switch {
	case a.Col == c.Col:
		lo, hi := minMax(a.Row, c.Row)
		for _, o := range opp {
			if o.Col == a.Col && o.Row > lo && o.Row < hi {
				return false
			}
		}
		return true

	case a.Row == c.Row:
		lo, hi := minMax(a.Col, c.Col)
		for _, o := range opp {
			if o.Row == a.Row && o.Col > lo && o.Col < hi {
				return false
			}
		}
		return true

	case abs(a.Col-c.Col) == abs(a.Row-c.Row):
		colLo, colHi := minMax(a.Col, c.Col)
		rowLo, rowHi := minMax(a.Row, c.Row)
		for _, o := range opp {
			// inside the open bounding box and on a diagonal through a
			if abs(o.Col-a.Col) != abs(o.Row-a.Row) {
				continue
			}
			if o.Col > colLo && o.Col < colHi && o.Row > rowLo && o.Row < rowHi {
				return false
			}
		}
		return true
	}
	return false
}

// BallActions returns every teammate cell side's ball can reach this turn,
// ascending. Passes may be chained through teammates, so the set is the
// fixed point of repeatedly adding teammates reachable by one clear pass
// from anything already reached. The ball's own cell is excluded. It returns
// nil unless side is White or Black.
func BallActions(b Board, side Side) []int {
	if !side.Valid() {
		return nil
	}
	opp := b.opponents(side)
	ball := b.cells[ballSlots[side]]

	reached := []int{ball}
	var unreached []int
	for _, s := range sideBlocks[side] {
		c := b.cells[s]
		if !containsInt(reached, c) && !containsInt(unreached, c) {
			unreached = append(unreached, c)
		}
	}

	frontier := len(reached)
	for frontier > 0 && len(unreached) > 0 {
		var newly, rest []int
		for _, u := range unreached {
			to := positionid.DecodeCoord(u)
			hit := false
			for _, t := range reached {
				if clearLine(opp[:], positionid.DecodeCoord(t), to) {
					hit = true
					break
				}
			}
			if hit {
				newly = append(newly, u)
			} else {
				rest = append(rest, u)
			}
		}
		reached = append(reached, newly...)
		unreached = rest
		frontier = len(newly)
	}

	result := make([]int, 0, len(reached)-1)
	for _, c := range reached {
		if c != ball {
			result = append(result, c)
		}
	}
	sort.Ints(result)
	return result
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func minMax(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
