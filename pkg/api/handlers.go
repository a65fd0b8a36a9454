package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/bbengine/pkg/engine"
	"github.com/yourusername/bbengine/pkg/record"
)

const (
	defaultPlayRounds = 1000
	maxPlayRounds     = 10000
	maxSelfPlayGames  = 100000
)

// Handlers holds the HTTP handlers and engine reference.
type Handlers struct {
	engine  *engine.Engine
	version string
	pool    *WorkerPool
	logger  *zap.Logger
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(e *engine.Engine, version string) *Handlers {
	return NewHandlersWithPool(e, version, nil)
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
// Handlers log through the engine's logger.
func NewHandlersWithPool(e *engine.Engine, version string, pool *WorkerPool) *Handlers {
	logger := zap.NewNop()
	if e != nil {
		logger = e.Logger()
	}
	return &Handlers{
		engine:  e,
		version: version,
		pool:    pool,
		logger:  logger,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// acquire takes a pool slot of the given class. On failure it writes a
// SERVER_BUSY response and returns false. The release func is never nil.
func (h *Handlers) acquire(w http.ResponseWriter, r *http.Request, class Class) (func(), bool) {
	if h.pool == nil {
		return func() {}, true
	}
	if err := h.pool.Acquire(r.Context(), class); err != nil {
		h.logger.Warn("pool slot unavailable", zap.Stringer("class", class), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
		return func() {}, false
	}
	return func() { h.pool.Release(class) }, true
}

// parsePositionSide parses the position and side fields shared by requests.
// It writes the error response itself and returns false on failure.
func parsePositionSide(w http.ResponseWriter, position, side string) (engine.Board, engine.Side, bool) {
	if position == "" {
		writeError(w, http.StatusBadRequest, "position is required", "MISSING_POSITION")
		return engine.Board{}, engine.NoSide, false
	}
	board, err := engine.ParseBoard(position)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid position: "+err.Error(), "INVALID_POSITION")
		return engine.Board{}, engine.NoSide, false
	}
	s := engine.White
	if side != "" {
		s, err = engine.ParseSide(side)
		if err != nil || s == engine.NoSide {
			writeError(w, http.StatusBadRequest, "side must be white or black", "INVALID_SIDE")
			return engine.Board{}, engine.NoSide, false
		}
	}
	return board, s, true
}

// actionErrorCode maps a validation error to a stable code.
func actionErrorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrOutOfBounds):
		return "OUT_OF_BOUNDS"
	case errors.Is(err, engine.ErrNotAKnightMove):
		return "NOT_A_KNIGHT_MOVE"
	case errors.Is(err, engine.ErrBallCarrierImmobile):
		return "BALL_CARRIER_IMMOBILE"
	case errors.Is(err, engine.ErrDestinationOccupied):
		return "DESTINATION_OCCUPIED"
	case errors.Is(err, engine.ErrBallTargetInvalid):
		return "BALL_TARGET_INVALID"
	case errors.Is(err, engine.ErrUnknownPiece):
		return "UNKNOWN_PIECE"
	}
	return "ILLEGAL_ACTION"
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Ready:   h.engine != nil,
	}

	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	if h.engine != nil {
		cache := h.engine.CacheStats()
		resp.Cache = &cache
	}

	writeJSON(w, http.StatusOK, resp)
}

// Actions handles POST /api/actions
func (h *Handlers) Actions(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquire(w, r, Fast)
	defer release()
	if !ok {
		return
	}

	var req ActionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	board, side, ok := parsePositionSide(w, req.Position, req.Side)
	if !ok {
		return
	}

	actions := h.engine.LegalActions(board, side)
	resp := ActionsResponse{
		Position:   board.PositionID(),
		Side:       side.String(),
		Actions:    ActionsToResponse(actions),
		NumActions: len(actions),
		Valid:      board.IsValid(),
		Terminal:   board.IsTerminal(),
	}
	if winner, over := board.Winner(); over {
		resp.Winner = winner.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

// Validate handles POST /api/validate. A rejected action is a normal
// response with valid=false, not an HTTP error.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquire(w, r, Fast)
	defer release()
	if !ok {
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	board, side, ok := parsePositionSide(w, req.Position, req.Side)
	if !ok {
		return
	}

	resp := ValidateResponse{Valid: true}
	if err := h.engine.Validate(board, side, engine.Action{Index: req.Index, Cell: req.Cell}); err != nil {
		resp = ValidateResponse{Valid: false, Error: err.Error(), Code: actionErrorCode(err)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Play handles POST /api/play: one random-vs-random game.
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquire(w, r, Fast)
	defer release()
	if !ok {
		return
	}

	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	board := engine.StartingPosition()
	if req.Position != "" {
		var err error
		board, err = engine.ParseBoard(req.Position)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid position: "+err.Error(), "INVALID_POSITION")
			return
		}
		if !board.IsValid() {
			writeError(w, http.StatusBadRequest, "position is not a legal board", "INVALID_POSITION")
			return
		}
	}

	maxRounds := req.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultPlayRounds
	}
	if maxRounds > maxPlayRounds {
		maxRounds = maxPlayRounds
	}
	seed := req.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	id := uuid.New().String()
	g := engine.NewGameFrom(board,
		h.engine.NewRandomPlayer(engine.White, seed),
		h.engine.NewRandomPlayer(engine.Black, seed+1),
		engine.GameOptions{
			Rules:     h.engine.Rules(),
			MaxRounds: maxRounds,
			Logger:    h.logger.With(zap.String("game_id", id)),
		},
	)

	result, err := g.Run()
	if err != nil && !errors.Is(err, engine.ErrRoundLimit) {
		writeError(w, http.StatusInternalServerError, err.Error(), "PLAY_ERROR")
		return
	}

	rec := record.FromGame(id, g.Start(), result, g.History())
	writeJSON(w, http.StatusOK, RecordToResponse(rec, g.Board()))
}

// SelfPlay handles POST /api/selfplay
func (h *Handlers) SelfPlay(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquire(w, r, Slow)
	defer release()
	if !ok {
		return
	}

	var req SelfPlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if req.Games > maxSelfPlayGames {
		writeError(w, http.StatusBadRequest, "too many games", "INVALID_GAMES")
		return
	}

	result, err := h.engine.SelfPlay(engine.SelfPlayOptions{
		Games:     req.Games,
		Workers:   req.Workers,
		Seed:      req.Seed,
		MaxRounds: req.MaxRounds,
	}, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "SELFPLAY_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, SelfPlayToResponse(result))
}
