package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// Player chooses an action for its side. The snapshot is a copy; players
// may keep or modify it freely. The returned value is opaque to the engine
// and only recorded in the turn history.
type Player interface {
	Policy(state Snapshot) (Action, float64)
}

// PlayerFunc adapts a function to the Player interface.
type PlayerFunc func(state Snapshot) (Action, float64)

// Policy calls f.
func (f PlayerFunc) Policy(state Snapshot) (Action, float64) {
	return f(state)
}

// Status is the state of a game.
type Status int

const (
	InProgress Status = iota
	WhiteWon
	BlackWon
)

func (s Status) String() string {
	switch s {
	case WhiteWon:
		return "white_won"
	case BlackWon:
		return "black_won"
	}
	return "in_progress"
}

// Result is the outcome of a game.
type Result struct {
	Round   int    // last round played (0-based, -1 if none)
	Winner  Side   // NoSide if the game was cut off
	Reason  string // human readable explanation
	Forfeit bool   // true if the loser proposed an illegal action
}

// Turn records one round of a game.
type Turn struct {
	Round    int
	Side     Side
	Position string // position ID before the action
	Action   Action
	Value    float64
	Err      error // non-nil if the action was rejected
}

// GameOptions configures a single game.
type GameOptions struct {
	Rules     RuleOptions
	MaxRounds int         // 0 = unlimited
	Logger    *zap.Logger // nil = no logging
}

// Game runs one game between two players. A Game is not safe for
// concurrent use; it owns its board exclusively.
type Game struct {
	start     Board
	board     Board
	round     int
	status    Status
	players   [2]Player
	rules     RuleOptions
	maxRounds int
	logger    *zap.Logger
	history   []Turn
	result    *Result
}

// NewGame creates a game from the starting position.
func NewGame(white, black Player, opts GameOptions) *Game {
	return NewGameFrom(StartingPosition(), white, black, opts)
}

// NewGameFrom creates a game from an arbitrary board. White moves first.
func NewGameFrom(board Board, white, black Player, opts GameOptions) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		start:     board,
		board:     board,
		round:     -1,
		status:    InProgress,
		players:   [2]Player{white, black},
		rules:     opts.Rules,
		maxRounds: opts.MaxRounds,
		logger:    logger,
	}
}

// Board returns a copy of the current board.
func (g *Game) Board() Board {
	return g.board
}

// Start returns the board the game started from.
func (g *Game) Start() Board {
	return g.start
}

// Round returns the last round played, -1 before the first move.
func (g *Game) Round() int {
	return g.round
}

// Status returns the game status.
func (g *Game) Status() Status {
	return g.status
}

// Result returns the result once the game is over.
func (g *Game) Result() (Result, bool) {
	if g.result == nil {
		return Result{}, false
	}
	return *g.result, true
}

// History returns a copy of the turns played so far.
func (g *Game) History() []Turn {
	h := make([]Turn, len(g.history))
	copy(h, g.history)
	return h
}

// SideToMove returns the side that plays the next round.
func (g *Game) SideToMove() Side {
	return Side((g.round + 1) % 2)
}

// GenerateActions returns every action side may take on the current board.
func (g *Game) GenerateActions(side Side) []Action {
	return GenerateActions(g.board, side)
}

// Validate checks action a for side against the current board.
func (g *Game) Validate(a Action, side Side) error {
	return ValidateAction(g.board, side, a, g.rules)
}

// Apply writes a validated action to the board.
func (g *Game) Apply(a Action, side Side) {
	ApplyAction(&g.board, side, a)
}

// Step plays one round. It returns true once the game is over. With a
// round limit configured, Step returns ErrRoundLimit instead of starting a
// round past the limit.
func (g *Game) Step() (bool, error) {
	if g.result != nil {
		return true, nil
	}
	if g.board.IsTerminal() {
		winner, _ := g.board.Winner()
		g.finish(winner, "position already terminal", false)
		return true, nil
	}
	if g.maxRounds > 0 && g.round+1 >= g.maxRounds {
		return true, ErrRoundLimit
	}

	g.round++
	side := Side(g.round % 2)
	posID := g.board.PositionID()

	action, value := g.players[side].Policy(g.board.Snapshot())
	g.logger.Debug("turn",
		zap.Int("round", g.round),
		zap.String("side", side.String()),
		zap.String("position", posID),
		zap.Stringer("action", action),
		zap.Float64("value", value),
	)

	turn := Turn{Round: g.round, Side: side, Position: posID, Action: action, Value: value}
	if err := g.Validate(action, side); err != nil {
		turn.Err = err
		g.history = append(g.history, turn)
		g.logger.Warn("illegal action",
			zap.Int("round", g.round),
			zap.String("side", side.String()),
			zap.Error(err),
		)
		g.finish(side.Opponent(), fmt.Sprintf("%s provided an invalid action: %v", side.Name(), err), true)
		return true, nil
	}

	g.Apply(action, side)
	g.history = append(g.history, turn)

	if !g.board.IsValid() {
		g.logger.Warn("board invalid after action",
			zap.Int("round", g.round),
			zap.String("position", g.board.PositionID()),
		)
	}

	if g.board.IsTerminal() {
		g.finish(side, "ball reached the far row", false)
		return true, nil
	}
	return false, nil
}

// Run plays until the game ends. On ErrRoundLimit the returned result has
// Winner NoSide.
func (g *Game) Run() (Result, error) {
	for {
		done, err := g.Step()
		if err != nil {
			return Result{Round: g.round, Winner: NoSide, Reason: err.Error()}, err
		}
		if done {
			return *g.result, nil
		}
	}
}

func (g *Game) finish(winner Side, reason string, forfeit bool) {
	g.result = &Result{Round: g.round, Winner: winner, Reason: reason, Forfeit: forfeit}
	switch winner {
	case White:
		g.status = WhiteWon
	case Black:
		g.status = BlackWon
	}
	g.logger.Info("game over",
		zap.Int("round", g.round),
		zap.String("winner", winner.String()),
		zap.String("reason", reason),
		zap.Bool("forfeit", forfeit),
	)
}
