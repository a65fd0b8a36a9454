package engine

import (
	"errors"
	"testing"
)

func TestValidateAction(t *testing.T) {
	start := StartingPosition()
	// white block 1 on (2,2), black block 0 on (0,2)
	crowded := boardOf(1, 16, 3, 4, 5, 3, 14, 51, 52, 53, 54, 52)
	strict := RuleOptions{StrictBallPass: true, StrictBallCarrier: true}

	tests := []struct {
		name    string
		board   Board
		side    Side
		action  Action
		rules   RuleOptions
		wantErr error
	}{
		{"knight jump", start, White, Action{0, 10}, RuleOptions{}, nil},
		{"black knight jump", start, Black, Action{0, 35}, RuleOptions{}, nil},
		{"not a knight jump", start, White, Action{0, 11}, RuleOptions{}, ErrNotAKnightMove},
		{"past last cell", start, White, Action{0, 56}, RuleOptions{}, ErrOutOfBounds},
		{"negative cell", start, White, Action{0, -1}, RuleOptions{}, ErrOutOfBounds},

		// the default carrier check looks at the last block
		{"last block pinned", start, White, Action{4, 20}, RuleOptions{}, ErrBallCarrierImmobile},
		{"last block free when strict", start, White, Action{4, 20}, strict, nil},
		{"real carrier moves", start, White, Action{2, 18}, RuleOptions{}, nil},
		{"real carrier pinned when strict", start, White, Action{2, 18}, strict, ErrBallCarrierImmobile},
		{"black last block pinned", start, Black, Action{4, 41}, RuleOptions{}, ErrBallCarrierImmobile},

		{"onto own block", crowded, White, Action{0, 16}, RuleOptions{}, ErrDestinationOccupied},
		{"onto opposing block", crowded, White, Action{0, 14}, RuleOptions{}, ErrDestinationOccupied},

		{"pass to teammate", start, White, Action{5, 1}, RuleOptions{}, nil},
		{"pass to empty cell", start, White, Action{5, 10}, RuleOptions{}, ErrBallTargetInvalid},
		{"pass to opposing block", start, White, Action{5, 50}, RuleOptions{}, ErrBallTargetInvalid},
		{"pass to own ball cell", start, White, Action{5, 3}, RuleOptions{}, nil},
		{"pass to own ball cell when strict", start, White, Action{5, 3}, strict, ErrBallTargetInvalid},
		{"pass without line", passingBoard(), White, Action{5, 6}, RuleOptions{}, nil},
		{"pass without line when strict", passingBoard(), White, Action{5, 6}, strict, ErrBallTargetInvalid},
		{"chained pass when strict", passingBoard(), White, Action{5, 24}, strict, nil},

		{"index too large", start, White, Action{6, 10}, RuleOptions{}, ErrUnknownPiece},
		{"negative index", start, White, Action{-1, 10}, RuleOptions{}, ErrUnknownPiece},
		{"no side", start, NoSide, Action{0, 10}, RuleOptions{}, ErrUnknownPiece},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAction(tc.board, tc.side, tc.action, tc.rules)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateAction(%s) = %v, want nil", tc.action, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateAction(%s) = %v, want %v", tc.action, err, tc.wantErr)
			}
			if !IsInvalidAction(err) {
				t.Errorf("%v is not an InvalidActionError", err)
			}
		})
	}
}

func TestValidateActionReportsSide(t *testing.T) {
	err := ValidateAction(StartingPosition(), Black, Action{1, 1}, RuleOptions{})
	var iae *InvalidActionError
	if !errors.As(err, &iae) {
		t.Fatalf("got %v, want *InvalidActionError", err)
	}
	if iae.Side != Black || iae.Action != (Action{1, 1}) {
		t.Errorf("error carries %s %s", iae.Side, iae.Action)
	}
}

// Every generated action passes strict validation except carrier moves,
// which GenerateActions never produces.
func TestGeneratedActionsValidateStrict(t *testing.T) {
	strict := RuleOptions{StrictBallPass: true, StrictBallCarrier: true}
	for _, b := range sampleBoards(t, 30) {
		for _, side := range []Side{White, Black} {
			for _, a := range GenerateActions(b, side) {
				if err := ValidateAction(b, side, a, strict); err != nil {
					t.Fatalf("%s %s %s: %v", b.PositionID(), side, a, err)
				}
			}
		}
	}
}
