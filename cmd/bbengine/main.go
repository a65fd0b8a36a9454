// bbengine - command line front end for the block-and-ball rules engine
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/bbengine/internal/positionid"
	"github.com/yourusername/bbengine/pkg/engine"
	"github.com/yourusername/bbengine/pkg/record"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "actions":
		cmdActions(args)
	case "validate":
		cmdValidate(args)
	case "play":
		cmdPlay(args)
	case "ids":
		cmdIDs(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bbengine - Block-and-ball rules engine

Usage: bbengine <command> [options]

Commands:
  actions   List the actions a side can take
  validate  Check a single action
  play      Play a random game and print every round
  ids       Convert between position IDs and cell lists

Use "bbengine <command> -h" for command-specific help.

Position Format:
  A position is either a 12 character position ID (e.g. "BCDEFDyz0120",
  the starting position) or a comma separated list of 12 cells:
  white blocks 0-4, white ball, black blocks 0-4, black ball.
  Cell = col + row*7 on the 7x8 board.`)
}

// commonFlags are shared by the position based commands.
type commonFlags struct {
	position *string
	side     *string
	strict   *bool
	debug    *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		position: fs.String("p", engine.StartingPosition().PositionID(), "Position ID or cell list"),
		side:     fs.String("s", "white", "Side to move (white or black)"),
		strict:   fs.Bool("strict", false, "Strict ball pass and ball carrier checks"),
		debug:    fs.Bool("debug", false, "Development logging"),
	}
}

func (c commonFlags) board() (engine.Board, engine.Side, error) {
	b, err := engine.ParseBoard(*c.position)
	if err != nil {
		return engine.Board{}, engine.NoSide, fmt.Errorf("invalid position: %w", err)
	}
	side, err := engine.ParseSide(*c.side)
	if err != nil || side == engine.NoSide {
		return engine.Board{}, engine.NoSide, fmt.Errorf("invalid side %q", *c.side)
	}
	return b, side, nil
}

func (c commonFlags) logger() *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if *c.debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func (c commonFlags) engine(maxRounds int) (*engine.Engine, *zap.Logger, error) {
	logger := c.logger()
	e, err := engine.NewEngine(engine.EngineOptions{
		StrictBallPass:    *c.strict,
		StrictBallCarrier: *c.strict,
		MaxRounds:         maxRounds,
		Logger:            logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return e, logger, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdActions(args []string) {
	fs := flag.NewFlagSet("actions", flag.ExitOnError)
	cf := addCommonFlags(fs)
	legalOnly := fs.Bool("legal", false, "Only list actions that pass validation")
	fs.Parse(args)

	b, side, err := cf.board()
	if err != nil {
		fail(err)
	}
	e, logger, err := cf.engine(0)
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	fmt.Print(renderBoard(b))
	if !b.IsValid() {
		fmt.Println("Warning: position is not a legal board")
	}
	if winner, over := b.Winner(); over {
		fmt.Printf("Terminal: %s has won\n", winner.Name())
	}

	actions := e.LegalActions(b, side)
	if *legalOnly {
		kept := actions[:0]
		for _, a := range actions {
			if e.Validate(b, side, a) == nil {
				kept = append(kept, a)
			}
		}
		actions = kept
	}

	fmt.Printf("%s has %d actions:\n", side.Name(), len(actions))
	for _, a := range actions {
		piece := fmt.Sprintf("block %d", a.Index)
		if a.IsBall() {
			piece = "ball"
		}
		fmt.Printf("  %-8s -> %2d %s\n", piece, a.Cell, positionid.DecodeCoord(a.Cell))
	}
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cf := addCommonFlags(fs)
	index := fs.Int("i", -1, "Piece index (0-4 block, 5 ball)")
	cell := fs.Int("c", -1, "Destination cell")
	fs.Parse(args)

	if err := requireAction(fs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: bbengine validate -p <position> -s <side> -i <index> -c <cell>")
		os.Exit(1)
	}

	b, side, err := cf.board()
	if err != nil {
		fail(err)
	}
	e, logger, err := cf.engine(0)
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	a := engine.Action{Index: *index, Cell: *cell}
	if err := e.Validate(b, side, a); err != nil {
		fmt.Printf("%s %s: illegal (%v)\n", side.Name(), a, errors.Unwrap(err))
		os.Exit(2)
	}
	fmt.Printf("%s %s: legal\n", side.Name(), a)
}

// requireAction checks that both -i and -c were given. Negative values are
// left to the validator, which reports them as illegal.
func requireAction(fs *flag.FlagSet) error {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	switch {
	case !set["i"] && !set["c"]:
		return fmt.Errorf("index and cell required")
	case !set["i"]:
		return fmt.Errorf("index (-i) required")
	case !set["c"]:
		return fmt.Errorf("cell (-c) required")
	}
	return nil
}

func cmdPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	cf := addCommonFlags(fs)
	seed := fs.Int64("seed", 0, "Random seed (0 = time based)")
	maxRounds := fs.Int("max-rounds", 1000, "Cut the game off after N rounds (0 = no limit)")
	out := fs.String("o", "", "Write the game listing to this file")
	quiet := fs.Bool("q", false, "Only print the result")
	fs.Parse(args)

	b, _, err := cf.board()
	if err != nil {
		fail(err)
	}
	if !b.IsValid() {
		fail(errors.New("start position is not a legal board"))
	}
	e, logger, err := cf.engine(*maxRounds)
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	g := e.NewGameFrom(b, e.NewRandomPlayer(engine.White, *seed), e.NewRandomPlayer(engine.Black, *seed+1))

	start := time.Now()
	result, err := g.Run()
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, engine.ErrRoundLimit) {
		fail(err)
	}

	history := g.History()
	if !*quiet {
		for _, t := range history {
			fmt.Printf("Round: %d Player: %d State: %s Action: %s Value: %g\n",
				t.Round, int(t.Side), t.Position, t.Action, t.Value)
		}
		fmt.Print(renderBoard(g.Board()))
	}

	if result.Winner == engine.NoSide {
		fmt.Printf("No winner after %d rounds (%.1fms)\n", result.Round+1, float64(elapsed.Microseconds())/1000)
	} else {
		fmt.Printf("%s won at round %d: %s (%.1fms)\n", result.Winner.Name(), result.Round, result.Reason,
			float64(elapsed.Microseconds())/1000)
	}

	if *out != "" {
		rec := record.FromGame(uuid.New().String(), g.Start(), result, history)
		f, err := os.Create(*out)
		if err != nil {
			fail(err)
		}
		defer f.Close()
		if err := record.ExportText(f, rec); err != nil {
			fail(err)
		}
	}
}

func cmdIDs(args []string) {
	fs := flag.NewFlagSet("ids", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: bbengine ids <position> [<position>...]")
		os.Exit(1)
	}
	for _, arg := range fs.Args() {
		cells, err := positionid.Parse(arg)
		if err != nil {
			fail(err)
		}
		b := engine.NewBoard(cells)
		fmt.Printf("%s  %s  valid=%v terminal=%v\n",
			positionid.PositionID(cells), positionid.FormatCells(cells), b.IsValid(), b.IsTerminal())
	}
}

// renderBoard draws the board with row 7 on top. Upper case letters are
// white, lower case black; the ball carrier is shown as O / o.
func renderBoard(b engine.Board) string {
	var grid [positionid.NumRows][positionid.NumCols]byte
	for r := range grid {
		for c := range grid[r] {
			grid[r][c] = '.'
		}
	}
	marks := [2][2]byte{{'W', 'O'}, {'w', 'o'}}
	for _, side := range []engine.Side{engine.White, engine.Black} {
		ball := b.BallCell(side)
		for _, slot := range engine.BlockSlots(side) {
			coord := b.Coord(slot)
			if !coord.InBounds() {
				continue
			}
			mark := marks[side][0]
			if b.Cell(slot) == ball {
				mark = marks[side][1]
			}
			grid[coord.Row][coord.Col] = mark
		}
	}

	var sb strings.Builder
	for r := positionid.NumRows - 1; r >= 0; r-- {
		fmt.Fprintf(&sb, "%d %s\n", r, string(grid[r][:]))
	}
	sb.WriteString("  0123456\n")
	return sb.String()
}
