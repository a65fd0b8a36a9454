// Package api provides the HTTP/JSON and WebSocket API for the rules engine.
package api

import (
	"github.com/yourusername/bbengine/internal/positionid"
	"github.com/yourusername/bbengine/pkg/engine"
	"github.com/yourusername/bbengine/pkg/record"
)

// ============================================================================
// Request Types
// ============================================================================

// ActionsRequest is the request body for action generation.
type ActionsRequest struct {
	Position string `json:"position"`       // Position ID or comma separated cells
	Side     string `json:"side,omitempty"` // "white" (default) or "black"
}

// ValidateRequest is the request body for action validation.
type ValidateRequest struct {
	Position string `json:"position"`       // Position ID or comma separated cells
	Side     string `json:"side,omitempty"` // "white" (default) or "black"
	Index    int    `json:"index"`          // 0-4 block, 5 ball
	Cell     int    `json:"cell"`           // Destination cell
}

// PlayRequest is the request body for a single random game.
type PlayRequest struct {
	Position  string `json:"position,omitempty"`   // Start position (default standard)
	Seed      int64  `json:"seed,omitempty"`       // Random seed (0 = random)
	MaxRounds int    `json:"max_rounds,omitempty"` // Round limit (default 1000)
}

// SelfPlayRequest is the request body for a self-play series.
type SelfPlayRequest struct {
	Games     int   `json:"games,omitempty"`      // Number of games (default 100)
	Workers   int   `json:"workers,omitempty"`    // Parallel workers (0 = GOMAXPROCS)
	Seed      int64 `json:"seed,omitempty"`       // Random seed (0 = random)
	MaxRounds int   `json:"max_rounds,omitempty"` // Per-game round limit
}

// ============================================================================
// Response Types
// ============================================================================

// ActionResponse describes one action.
type ActionResponse struct {
	Index int              `json:"index"`
	Cell  int              `json:"cell"`
	Piece string           `json:"piece"` // "block" or "ball"
	To    positionid.Coord `json:"to"`
}

// ActionsResponse is the response for action generation.
type ActionsResponse struct {
	Position   string           `json:"position"`         // Position ID
	Side       string           `json:"side"`             // Side the actions are for
	Actions    []ActionResponse `json:"actions"`          // Generated actions
	NumActions int              `json:"num_actions"`      // len(Actions)
	Valid      bool             `json:"valid"`            // Board passes IsValid
	Terminal   bool             `json:"terminal"`         // Board is terminal
	Winner     string           `json:"winner,omitempty"` // Set on terminal boards
}

// ValidateResponse is the response for action validation.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"` // Rejection reason
	Code  string `json:"code,omitempty"`  // Stable reason code
}

// TurnResponse is one round of a played game.
type TurnResponse struct {
	Round    int     `json:"round"`
	Side     string  `json:"side"`
	Position string  `json:"position"` // Position ID before the action
	Index    int     `json:"index"`
	Cell     int     `json:"cell"`
	Value    float64 `json:"value"`
	Error    string  `json:"error,omitempty"`
}

// PlayResponse is the response for a single game.
type PlayResponse struct {
	GameID  string         `json:"game_id"`
	Winner  string         `json:"winner"` // "WHITE", "BLACK" or "NONE" when cut off
	Reason  string         `json:"reason"`
	Round   int            `json:"round"` // Last round played
	Forfeit bool           `json:"forfeit"`
	Final   string         `json:"final"` // Final position ID
	Turns   []TurnResponse `json:"turns"`
}

// SelfPlayResponse is the response for a self-play series.
type SelfPlayResponse struct {
	Games        int     `json:"games"`
	WhiteWins    int     `json:"white_wins"`
	BlackWins    int     `json:"black_wins"`
	Forfeits     int     `json:"forfeits"`
	Unfinished   int     `json:"unfinished"`
	WhiteWinRate float64 `json:"white_win_rate"` // Percentage of decided games
	MeanRounds   float64 `json:"mean_rounds"`
	RoundsStdDev float64 `json:"rounds_std_dev"`
	RoundsCI     float64 `json:"rounds_ci"`
	MinRounds    float64 `json:"min_rounds"`
	MaxRounds    float64 `json:"max_rounds"`
}

// SelfPlayProgressResponse is streamed while a series runs.
type SelfPlayProgressResponse struct {
	GamesCompleted int     `json:"games_completed"`
	GamesTotal     int     `json:"games_total"`
	Percent        float64 `json:"percent"`
	WhiteWinRate   float64 `json:"white_win_rate"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error   string `json:"error"`             // Error message
	Code    string `json:"code,omitempty"`    // Error code
	Details string `json:"details,omitempty"` // Additional details
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string             `json:"status"`          // "ok" or "error"
	Version string             `json:"version"`         // Engine version
	Ready   bool               `json:"ready"`           // Whether an engine is attached
	Pool    *PoolStats         `json:"pool,omitempty"`  // Worker pool statistics
	Cache   *engine.CacheStats `json:"cache,omitempty"` // Action cache statistics
}

// ============================================================================
// Helper Functions
// ============================================================================

// ActionsToResponse converts engine actions to their API form.
func ActionsToResponse(actions []engine.Action) []ActionResponse {
	out := make([]ActionResponse, len(actions))
	for i, a := range actions {
		piece := "block"
		if a.IsBall() {
			piece = "ball"
		}
		out[i] = ActionResponse{Index: a.Index, Cell: a.Cell, Piece: piece, To: positionid.DecodeCoord(a.Cell)}
	}
	return out
}

// RecordToResponse converts a game record and its final board to a response.
func RecordToResponse(rec record.GameRecord, final engine.Board) *PlayResponse {
	resp := &PlayResponse{
		GameID:  rec.GameID,
		Winner:  rec.Winner,
		Reason:  rec.Reason,
		Round:   int(rec.Round),
		Forfeit: rec.Forfeit,
		Final:   final.PositionID(),
		Turns:   make([]TurnResponse, len(rec.Turns)),
	}
	for i, t := range rec.Turns {
		resp.Turns[i] = TurnResponse{
			Round:    int(t.Round),
			Side:     t.Side,
			Position: t.Position,
			Index:    int(t.Index),
			Cell:     int(t.Cell),
			Value:    t.Value,
			Error:    t.Error,
		}
	}
	return resp
}

// SelfPlayToResponse converts a series result to an API response.
func SelfPlayToResponse(r *engine.SelfPlayResult) *SelfPlayResponse {
	return &SelfPlayResponse{
		Games:        r.GamesCompleted,
		WhiteWins:    r.WhiteWins,
		BlackWins:    r.BlackWins,
		Forfeits:     r.Forfeits,
		Unfinished:   r.Unfinished,
		WhiteWinRate: r.WhiteWinRate * 100,
		MeanRounds:   r.MeanRounds,
		RoundsStdDev: r.RoundsStdDev,
		RoundsCI:     r.RoundsCI,
		MinRounds:    r.MinRounds,
		MaxRounds:    r.MaxRounds,
	}
}
