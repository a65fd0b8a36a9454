package engine

import (
	"testing"

	"github.com/yourusername/bbengine/internal/positionid"
)

func boardOf(cells ...int) Board {
	var c positionid.Cells
	copy(c[:], cells)
	return NewBoard(c)
}

func TestStartingPositionValid(t *testing.T) {
	b := StartingPosition()

	if !b.IsValid() {
		t.Fatal("starting position should be valid")
	}
	if b.IsTerminal() {
		t.Error("starting position should not be terminal")
	}
	if b.PositionID() != "BCDEFDyz0120" {
		t.Errorf("PositionID = %s", b.PositionID())
	}

	// balls sit on the middle block of each side
	if b.BallCell(White) != b.Cell(2) || b.BallCell(Black) != b.Cell(8) {
		t.Errorf("balls at %d,%d", b.BallCell(White), b.BallCell(Black))
	}
}

func TestUpdateKeepsDecodedInSync(t *testing.T) {
	b := StartingPosition()
	b.Update(0, 10)

	if b.Cell(0) != 10 {
		t.Errorf("Cell(0) = %d, want 10", b.Cell(0))
	}
	if got := b.Coord(0); got != (positionid.Coord{Col: 3, Row: 1}) {
		t.Errorf("Coord(0) = %v, want (3,1)", got)
	}
	for slot := 0; slot < positionid.NumSlots; slot++ {
		if b.Snapshot()[slot] != positionid.DecodeCoord(b.Cell(slot)) {
			t.Errorf("slot %d out of sync", slot)
		}
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  bool
	}{
		{"start", StartingPosition(), true},
		{"block off board", boardOf(1, 2, 3, 4, 56, 3, 50, 51, 52, 53, 54, 52), false},
		{"negative cell", boardOf(-1, 2, 3, 4, 5, 3, 50, 51, 52, 53, 54, 52), false},
		{"own blocks overlap", boardOf(1, 1, 3, 4, 5, 3, 50, 51, 52, 53, 54, 52), false},
		{"blocks of both sides overlap", boardOf(1, 2, 3, 4, 50, 3, 50, 51, 52, 53, 54, 52), false},
		{"white ball loose", boardOf(1, 2, 3, 4, 5, 10, 50, 51, 52, 53, 54, 52), false},
		{"white ball on black block", boardOf(1, 2, 3, 4, 5, 50, 50, 51, 52, 53, 54, 52), false},
		{"black ball on white block", boardOf(1, 2, 3, 4, 5, 3, 50, 51, 52, 53, 54, 3), false},
		{"ball moved to other own block", boardOf(1, 2, 3, 4, 5, 5, 50, 51, 52, 53, 54, 54), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.board.IsValid(); got != tc.want {
				t.Errorf("IsValid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		name       string
		board      Board
		terminal   bool
		wantWinner Side
	}{
		{
			name:       "white ball on row 7",
			board:      boardOf(0, 1, 2, 3, 49, 49, 50, 51, 52, 53, 54, 52),
			terminal:   true,
			wantWinner: White,
		},
		{
			name:       "black ball on row 0",
			board:      boardOf(1, 2, 3, 4, 5, 3, 0, 51, 52, 53, 54, 0),
			terminal:   true,
			wantWinner: Black,
		},
		{
			name:       "row 7 but invalid",
			board:      boardOf(0, 1, 2, 3, 4, 49, 50, 51, 52, 53, 54, 52),
			terminal:   false,
			wantWinner: NoSide,
		},
		{
			name:       "white ball on row 6",
			board:      boardOf(0, 1, 2, 3, 42, 42, 50, 51, 52, 53, 54, 52),
			terminal:   false,
			wantWinner: NoSide,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.board.IsTerminal(); got != tc.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tc.terminal)
			}
			winner, ok := tc.board.Winner()
			if ok != tc.terminal || winner != tc.wantWinner {
				t.Errorf("Winner() = %v,%v, want %v", winner, ok, tc.wantWinner)
			}
		})
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := StartingPosition()
	s := b.Snapshot()
	s[0] = positionid.Coord{Col: 6, Row: 6}

	if b.Coord(0) != (positionid.Coord{Col: 1, Row: 0}) {
		t.Error("modifying a snapshot changed the board")
	}

	back := BoardFromSnapshot(b.Snapshot())
	if !EqualBoards(back, b) {
		t.Errorf("BoardFromSnapshot = %v, want %v", back.Cells(), b.Cells())
	}
}

func TestSideHelpers(t *testing.T) {
	if White.Opponent() != Black || Black.Opponent() != White {
		t.Error("Opponent wrong")
	}
	if White.String() != "WHITE" || Black.String() != "BLACK" || NoSide.String() != "NONE" {
		t.Error("String labels wrong")
	}
	if Slot(White, 5) != 5 || Slot(Black, 0) != 6 || Slot(Black, 5) != 11 {
		t.Error("Slot offsets wrong")
	}
	if BallSlot(Black) != 11 || BlockSlots(Black)[4] != 10 {
		t.Error("slot tables wrong")
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{"white", White, false},
		{"WHITE", White, false},
		{"w", White, false},
		{"0", White, false},
		{" Black ", Black, false},
		{"b", Black, false},
		{"1", Black, false},
		{"none", NoSide, false},
		{"", NoSide, false},
		{"red", NoSide, true},
		{"2", NoSide, true},
	}
	for _, tc := range tests {
		got, err := ParseSide(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseSide(%q) = %s, %v", tc.in, got, err)
		}
	}
}

func TestParseBoard(t *testing.T) {
	for _, s := range []string{"BCDEFDyz0120", "1,2,3,4,5,3,50,51,52,53,54,52"} {
		b, err := ParseBoard(s)
		if err != nil {
			t.Fatalf("ParseBoard(%q): %v", s, err)
		}
		if !EqualBoards(b, StartingPosition()) {
			t.Errorf("ParseBoard(%q) = %v", s, b.Cells())
		}
	}

	// encodings are checked, validity is not
	b, err := ParseBoard("1,1,3,4,5,3,50,51,52,53,54,52")
	if err != nil || b.IsValid() {
		t.Errorf("overlapping board: valid=%v err=%v", b.IsValid(), err)
	}
	for _, s := range []string{"", "BCDEF", "1,2,3", "1,2,3,4,5,3,50,51,52,53,54,99"} {
		if _, err := ParseBoard(s); err == nil {
			t.Errorf("ParseBoard(%q) succeeded", s)
		}
	}
}
