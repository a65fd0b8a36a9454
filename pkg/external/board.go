package external

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/bbengine/pkg/engine"
)

// BoardLine is a parsed board line.
// Format: board:<position>:<side>[:<round>]
//
// position is a position ID or a comma list of 12 cells, side is a name
// accepted by engine.ParseSide.
type BoardLine struct {
	Board engine.Board
	Side  engine.Side
	Round int // -1 if not given
}

// ParseBoardLine parses a board line. The "board:" prefix is optional.
func ParseBoardLine(s string) (*BoardLine, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "board:")

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("invalid board line: expected 2 or 3 fields, got %d", len(parts))
	}

	board, err := engine.ParseBoard(parts[0])
	if err != nil {
		return nil, err
	}
	side, err := engine.ParseSide(parts[1])
	if err != nil {
		return nil, err
	}
	if side == engine.NoSide {
		return nil, fmt.Errorf("invalid board line: no side to move")
	}

	bl := &BoardLine{Board: board, Side: side, Round: -1}
	if len(parts) == 3 {
		round, err := strconv.Atoi(parts[2])
		if err != nil || round < 0 {
			return nil, fmt.Errorf("invalid round %q", parts[2])
		}
		bl.Round = round
	}
	return bl, nil
}

// String formats the line so that ParseBoardLine reads it back.
func (bl *BoardLine) String() string {
	s := fmt.Sprintf("board:%s:%s", bl.Board.PositionID(), strings.ToLower(bl.Side.String()))
	if bl.Round >= 0 {
		s += ":" + strconv.Itoa(bl.Round)
	}
	return s
}

// FormatAction writes an action as "index cell", with "ball" for the ball.
func FormatAction(a engine.Action) string {
	if a.IsBall() {
		return fmt.Sprintf("ball %d", a.Cell)
	}
	return fmt.Sprintf("%d %d", a.Index, a.Cell)
}

// ParseAction reads the two fields written by FormatAction.
func ParseAction(index, cell string) (engine.Action, error) {
	var a engine.Action
	if strings.EqualFold(index, "ball") {
		a.Index = engine.BallIndex
	} else {
		i, err := strconv.Atoi(index)
		if err != nil {
			return a, fmt.Errorf("invalid piece index %q", index)
		}
		a.Index = i
	}
	c, err := strconv.Atoi(cell)
	if err != nil {
		return a, fmt.Errorf("invalid cell %q", cell)
	}
	a.Cell = c
	return a, nil
}
