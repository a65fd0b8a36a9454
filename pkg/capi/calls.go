package main

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/bbengine/pkg/api"
	"github.com/yourusername/bbengine/pkg/engine"
	"github.com/yourusername/bbengine/pkg/record"
)

var errNotInitialized = errors.New("engine not initialized")

// parseArgs converts the position and side strings passed over the C API.
func parseArgs(posStr, sideStr string) (engine.Board, engine.Side, error) {
	board, err := engine.ParseBoard(posStr)
	if err != nil {
		return board, engine.NoSide, err
	}
	side, err := engine.ParseSide(sideStr)
	if err != nil {
		return board, engine.NoSide, err
	}
	if side == engine.NoSide {
		side = engine.White
	}
	return board, side, nil
}

// legalActionsJSON returns the actions response for a position as JSON.
func legalActionsJSON(eng *engine.Engine, posStr, sideStr string) (string, error) {
	board, side, err := parseArgs(posStr, sideStr)
	if err != nil {
		return "", err
	}

	actions := eng.LegalActions(board, side)
	resp := api.ActionsResponse{
		Position:   board.PositionID(),
		Side:       side.String(),
		Actions:    api.ActionsToResponse(actions),
		NumActions: len(actions),
		Valid:      board.IsValid(),
		Terminal:   board.IsTerminal(),
	}
	if winner, ok := board.Winner(); ok {
		resp.Winner = winner.String()
	}

	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}

// validate returns 0 for a legal action and 1 with the reason for an
// illegal one. Argument errors come back as err.
func validate(eng *engine.Engine, posStr, sideStr string, index, cell int) (int, string, error) {
	board, side, err := parseArgs(posStr, sideStr)
	if err != nil {
		return -1, "", err
	}
	if err := eng.Validate(board, side, engine.Action{Index: index, Cell: cell}); err != nil {
		return 1, err.Error(), nil
	}
	return 0, "", nil
}

// playListing plays one random game and returns its text listing.
func playListing(eng *engine.Engine, seed int64, maxRounds int) (string, error) {
	if maxRounds <= 0 {
		maxRounds = 1000
	}
	g := engine.NewGame(
		eng.NewRandomPlayer(engine.White, seed),
		eng.NewRandomPlayer(engine.Black, seed+1),
		engine.GameOptions{Rules: eng.Rules(), MaxRounds: maxRounds},
	)
	result, err := g.Run()
	if err != nil && !errors.Is(err, engine.ErrRoundLimit) {
		return "", err
	}

	var sb strings.Builder
	rec := record.FromGame(uuid.New().String(), g.Start(), result, g.History())
	if err := record.ExportText(&sb, rec); err != nil {
		return "", err
	}
	return sb.String(), nil
}
