package record

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/bbengine/pkg/engine"
)

// The text listing looks like this:
//
//	; [Game "5c1b..."]
//	; [Start "BCDEFDyz0120"]
//	; [Winner "BLACK"]
//	; [Reason "White provided an invalid action: ..."]
//	; [Round "2"]
//	; [Forfeit "true"]
//
//	  0) WHITE 0,10 15
//	  1) BLACK 0,35 15
//	  2) WHITE 0,10 0 ! White action (0,10): not a knight move

var (
	textTagRE  = regexp.MustCompile(`^;\s*\[(\w+)\s+"(.*)"\]$`)
	textTurnRE = regexp.MustCompile(`^(\d+)\)\s+(\w+)\s+(-?\d+),(-?\d+)\s+(\S+)(?:\s+!\s+(.*))?$`)
)

// ExportText writes rec as a plain-text listing.
func ExportText(w io.Writer, rec GameRecord) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "; [Game \"%s\"]\n", rec.GameID)
	fmt.Fprintf(bw, "; [Start \"%s\"]\n", rec.Start)
	fmt.Fprintf(bw, "; [Winner \"%s\"]\n", rec.Winner)
	if rec.Reason != "" {
		fmt.Fprintf(bw, "; [Reason \"%s\"]\n", rec.Reason)
	}
	fmt.Fprintf(bw, "; [Round \"%d\"]\n", rec.Round)
	fmt.Fprintf(bw, "; [Forfeit \"%t\"]\n\n", rec.Forfeit)

	for _, t := range rec.Turns {
		fmt.Fprintf(bw, "%3d) %s %d,%d %s", t.Round, t.Side, t.Index, t.Cell,
			strconv.FormatFloat(t.Value, 'g', -1, 64))
		if t.Error != "" {
			fmt.Fprintf(bw, " ! %s", t.Error)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// ImportText reads a listing written by ExportText. Turn positions are not
// part of the listing; they are rebuilt by replaying from the start.
func ImportText(r io.Reader) (GameRecord, error) {
	var rec GameRecord
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ";") {
			m := textTagRE.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if err := setTag(&rec, m[1], m[2]); err != nil {
				return rec, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}

		m := textTurnRE.FindStringSubmatch(line)
		if m == nil {
			return rec, fmt.Errorf("line %d: cannot parse %q", lineNo, line)
		}
		round, _ := strconv.Atoi(m[1])
		index, _ := strconv.Atoi(m[3])
		cell, _ := strconv.Atoi(m[4])
		value, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			return rec, fmt.Errorf("line %d: value: %w", lineNo, err)
		}
		rec.Turns = append(rec.Turns, TurnRecord{
			Round: int32(round),
			Side:  m[2],
			Index: int32(index),
			Cell:  int32(cell),
			Value: value,
			Error: m[6],
		})
	}
	if err := scanner.Err(); err != nil {
		return rec, fmt.Errorf("reading listing: %w", err)
	}

	if err := fillPositions(&rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func setTag(rec *GameRecord, key, value string) error {
	switch strings.ToLower(key) {
	case "game":
		rec.GameID = value
	case "start":
		rec.Start = value
	case "winner":
		rec.Winner = value
	case "reason":
		rec.Reason = value
	case "round":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("round: %w", err)
		}
		rec.Round = int32(n)
	case "forfeit":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("forfeit: %w", err)
		}
		rec.Forfeit = b
	}
	return nil
}

// fillPositions sets each turn's position ID by replaying the listing.
func fillPositions(rec *GameRecord) error {
	board, err := engine.ParseBoard(rec.Start)
	if err != nil {
		return fmt.Errorf("start position: %w", err)
	}
	for i := range rec.Turns {
		t := &rec.Turns[i]
		t.Position = board.PositionID()
		if t.Error != "" {
			continue
		}
		if err := applyTurn(&board, *t); err != nil {
			return err
		}
	}
	return nil
}
