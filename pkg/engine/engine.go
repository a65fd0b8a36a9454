package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// Engine is the shared entry point used by the API and the commands.
// It is safe for concurrent use; each Game it creates is not.
type Engine struct {
	rules     RuleOptions
	maxRounds int
	cache     *ActionCache
	logger    *zap.Logger
}

// EngineOptions configures the engine
type EngineOptions struct {
	CacheSize         int         // Action cache size (0 = default, negative = disabled)
	StrictBallPass    bool        // Validate ball passes against line of sight
	StrictBallCarrier bool        // Check the real ball carrier instead of the last block
	MaxRounds         int         // Cut games off after this many rounds (0 = unlimited)
	Logger            *zap.Logger // nil = no logging
}

// NewEngine creates a new engine with the given options
func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.MaxRounds < 0 {
		return nil, fmt.Errorf("max rounds must not be negative, got %d", opts.MaxRounds)
	}

	e := &Engine{
		rules: RuleOptions{
			StrictBallPass:    opts.StrictBallPass,
			StrictBallCarrier: opts.StrictBallCarrier,
		},
		maxRounds: opts.MaxRounds,
		logger:    opts.Logger,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}

	cacheSize := opts.CacheSize
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	if cacheSize > 0 {
		e.cache = NewActionCache(uint32(cacheSize))
	}

	return e, nil
}

// Rules returns the validation rules in force.
func (e *Engine) Rules() RuleOptions {
	return e.rules
}

// Logger returns the engine logger.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

// gameOptions returns the options new games inherit from the engine.
func (e *Engine) gameOptions() GameOptions {
	return GameOptions{Rules: e.rules, MaxRounds: e.maxRounds, Logger: e.logger}
}

// NewGame starts a game from the starting position.
func (e *Engine) NewGame(white, black Player) *Game {
	return NewGame(white, black, e.gameOptions())
}

// NewGameFrom starts a game from board.
func (e *Engine) NewGameFrom(board Board, white, black Player) *Game {
	return NewGameFrom(board, white, black, e.gameOptions())
}

// NewRandomPlayer returns a random player that follows the engine's rules.
func (e *Engine) NewRandomPlayer(side Side, seed int64) *RandomPlayer {
	return NewRandomPlayer(side, e.rules, seed)
}

// LegalActions returns GenerateActions(b, side), served from the cache when
// possible.
func (e *Engine) LegalActions(b Board, side Side) []Action {
	if e.cache == nil {
		return GenerateActions(b, side)
	}
	key := b.Key()
	if actions, ok := e.cache.Lookup(key, side); ok {
		return actions
	}
	actions := GenerateActions(b, side)
	e.cache.Add(key, side, actions)
	return actions
}

// Validate checks action a for side on b with the engine's rules.
func (e *Engine) Validate(b Board, side Side, a Action) error {
	return ValidateAction(b, side, a, e.rules)
}

// CacheStats returns the action cache statistics (zero if disabled).
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}
