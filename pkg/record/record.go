// Package record stores finished games.
// Records can be written to Parquet files for bulk analysis or to a plain-text
// listing modelled on the MAT match format.
package record

import (
	"fmt"

	"github.com/yourusername/bbengine/internal/positionid"
	"github.com/yourusername/bbengine/pkg/engine"
)

// TurnRecord is one round of a game.
type TurnRecord struct {
	Round    int32   `parquet:"name=round, type=INT32"`
	Side     string  `parquet:"name=side, type=BYTE_ARRAY, convertedtype=UTF8"`
	Position string  `parquet:"name=position, type=BYTE_ARRAY, convertedtype=UTF8"`
	Index    int32   `parquet:"name=index, type=INT32"`
	Cell     int32   `parquet:"name=cell, type=INT32"`
	Value    float64 `parquet:"name=value, type=DOUBLE"`
	Error    string  `parquet:"name=error, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// GameRecord is a finished (or cut off) game.
type GameRecord struct {
	GameID  string       `parquet:"name=game_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Start   string       `parquet:"name=start, type=BYTE_ARRAY, convertedtype=UTF8"`
	Winner  string       `parquet:"name=winner, type=BYTE_ARRAY, convertedtype=UTF8"`
	Reason  string       `parquet:"name=reason, type=BYTE_ARRAY, convertedtype=UTF8"`
	Round   int32        `parquet:"name=round, type=INT32"`
	Forfeit bool         `parquet:"name=forfeit, type=BOOLEAN"`
	Turns   []TurnRecord `parquet:"name=turns, type=LIST"`
}

// FromGame converts a game that started from start, its result and its turn
// history to a record.
func FromGame(id string, start engine.Board, result engine.Result, history []engine.Turn) GameRecord {
	rec := GameRecord{
		GameID:  id,
		Start:   start.PositionID(),
		Winner:  result.Winner.String(),
		Reason:  result.Reason,
		Round:   int32(result.Round),
		Forfeit: result.Forfeit,
		Turns:   make([]TurnRecord, 0, len(history)),
	}
	for _, t := range history {
		tr := TurnRecord{
			Round:    int32(t.Round),
			Side:     t.Side.String(),
			Position: t.Position,
			Index:    int32(t.Action.Index),
			Cell:     int32(t.Action.Cell),
			Value:    t.Value,
		}
		if t.Err != nil {
			tr.Error = t.Err.Error()
		}
		rec.Turns = append(rec.Turns, tr)
	}
	return rec
}

// WinnerSide returns the winner as an engine side.
func (r GameRecord) WinnerSide() engine.Side {
	s, err := engine.ParseSide(r.Winner)
	if err != nil {
		return engine.NoSide
	}
	return s
}

// Replay rebuilds the final board by applying every accepted turn to the
// start position. Rejected turns are skipped.
func (r GameRecord) Replay() (engine.Board, error) {
	board, err := engine.ParseBoard(r.Start)
	if err != nil {
		return engine.Board{}, fmt.Errorf("game %s: %w", r.GameID, err)
	}
	for _, t := range r.Turns {
		if t.Error != "" {
			continue
		}
		if err := applyTurn(&board, t); err != nil {
			return engine.Board{}, fmt.Errorf("game %s: %w", r.GameID, err)
		}
	}
	return board, nil
}

// applyTurn applies an accepted turn to board. Records come from files, so
// the side, piece index and cell are range checked first. Rule checks are
// not repeated: the record may have been played under strict rules.
func applyTurn(board *engine.Board, t TurnRecord) error {
	side, err := engine.ParseSide(t.Side)
	if err != nil || side == engine.NoSide {
		return fmt.Errorf("round %d: bad side %q", t.Round, t.Side)
	}
	if t.Index < 0 || t.Index > engine.BallIndex {
		return fmt.Errorf("round %d: bad piece index %d", t.Round, t.Index)
	}
	if !positionid.ValidCell(int(t.Cell)) {
		return fmt.Errorf("round %d: bad cell %d", t.Round, t.Cell)
	}
	engine.ApplyAction(board, side, engine.Action{Index: int(t.Index), Cell: int(t.Cell)})
	return nil
}
