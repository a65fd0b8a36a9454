// Package positionid implements cell encoding and position IDs for the
// block-and-ball board.
//
// A cell is addressed either by its linear index n in [0, 55] or by its
// (col, row) pair on the 7x8 grid, with n = col + row*7. A position is the
// 12-slot vector of cells (five blocks and a ball per side); its position ID
// is a 12-character string holding one base64 digit per slot.
package positionid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// NumCols is the number of columns on the board
	NumCols = 7
	// NumRows is the number of rows on the board
	NumRows = 8
	// NumCells is the number of addressable cells
	NumCells = NumCols * NumRows
	// NumSlots is the length of a position vector
	NumSlots = 12
	// PositionIDLength is the length of a position ID string
	PositionIDLength = NumSlots
)

// Base64 alphabet used for position ID encoding
const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Cells is a position vector: one cell index per slot.
// Slots 0-4 are white blocks, 5 the white ball, 6-10 black blocks, 11 the black ball.
type Cells [NumSlots]int

// Coord is a decoded cell.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Key is a compact comparable representation of a position (6 bits per slot).
type Key struct {
	Data [2]uint64
}

// Encode maps (col, row) to a linear cell index. No bounds checking.
func Encode(col, row int) int {
	return col + row*NumCols
}

// Decode maps a linear cell index to (col, row).
func Decode(n int) (col, row int) {
	return n % NumCols, n / NumCols
}

// DecodeCoord is Decode returning a Coord.
func DecodeCoord(n int) Coord {
	col, row := Decode(n)
	return Coord{Col: col, Row: row}
}

// Cell returns the linear index of c.
func (c Coord) Cell() int {
	return Encode(c.Col, c.Row)
}

// InBounds reports whether c lies on the board.
func (c Coord) InBounds() bool {
	return c.Col >= 0 && c.Col < NumCols && c.Row >= 0 && c.Row < NumRows
}

// String formats c as "(col,row)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Col, c.Row)
}

// ValidCell reports whether n is a cell index on the board.
func ValidCell(n int) bool {
	return n >= 0 && n < NumCells
}

// MakeKey packs a position into a Key. Slots 0-9 go to Data[0], 10-11 to Data[1].
func MakeKey(cells Cells) Key {
	var key Key
	for i, c := range cells {
		v := uint64(c) & 0x3F
		if i < 10 {
			key.Data[0] |= v << (6 * uint(i))
		} else {
			key.Data[1] |= v << (6 * uint(i-10))
		}
	}
	return key
}

// CellsFromKey reverses MakeKey.
func CellsFromKey(key Key) Cells {
	var cells Cells
	for i := range cells {
		if i < 10 {
			cells[i] = int((key.Data[0] >> (6 * uint(i))) & 0x3F)
		} else {
			cells[i] = int((key.Data[1] >> (6 * uint(i-10))) & 0x3F)
		}
	}
	return cells
}

// PositionID generates the position ID string for a position.
// Cells outside [0, 63] cannot be represented and are masked to 6 bits.
func PositionID(cells Cells) string {
	result := make([]byte, PositionIDLength)
	for i, c := range cells {
		result[i] = base64Chars[c&0x3F]
	}
	return string(result)
}

// base64Decode decodes a base64 character to its value
func base64Decode(ch byte) uint8 {
	if ch >= 'A' && ch <= 'Z' {
		return ch - 'A'
	}
	if ch >= 'a' && ch <= 'z' {
		return ch - 'a' + 26
	}
	if ch >= '0' && ch <= '9' {
		return ch - '0' + 52
	}
	if ch == '+' {
		return 62
	}
	if ch == '/' {
		return 63
	}
	return 255
}

// ErrInvalidPositionID is returned when a position ID is invalid
var ErrInvalidPositionID = errors.New("invalid position ID")

// CellsFromPositionID decodes a position ID string.
// Only the encoding is checked here; board validity is the engine's concern.
func CellsFromPositionID(posID string) (Cells, error) {
	var cells Cells

	if len(posID) != PositionIDLength {
		return cells, ErrInvalidPositionID
	}

	for i := 0; i < PositionIDLength; i++ {
		v := base64Decode(posID[i])
		if v == 255 || int(v) >= NumCells {
			return cells, ErrInvalidPositionID
		}
		cells[i] = int(v)
	}

	return cells, nil
}

// ParseCells parses a comma separated list of 12 cell indices,
// e.g. "1,2,3,4,5,3,50,51,52,53,54,52".
func ParseCells(s string) (Cells, error) {
	var cells Cells

	parts := strings.Split(s, ",")
	if len(parts) != NumSlots {
		return cells, fmt.Errorf("expected %d cells, got %d", NumSlots, len(parts))
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return cells, fmt.Errorf("slot %d: %w", i, err)
		}
		if !ValidCell(n) {
			return cells, fmt.Errorf("slot %d: cell %d out of range", i, n)
		}
		cells[i] = n
	}
	return cells, nil
}

// Parse accepts either a position ID or a comma separated cell list.
func Parse(s string) (Cells, error) {
	if strings.Contains(s, ",") {
		return ParseCells(s)
	}
	cells, err := CellsFromPositionID(s)
	if err != nil {
		return cells, fmt.Errorf("%w: %q", err, s)
	}
	return cells, nil
}

// FormatCells formats a position as a comma separated list.
func FormatCells(cells Cells) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}
