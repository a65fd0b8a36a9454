package main

import (
	"flag"
	"strings"
	"testing"

	"github.com/yourusername/bbengine/pkg/engine"
)

func TestRenderBoard(t *testing.T) {
	got := renderBoard(engine.StartingPosition())
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	if lines[0] != "7 .wwoww." {
		t.Errorf("top row = %q", lines[0])
	}
	if lines[7] != "0 .WWOWW." {
		t.Errorf("bottom row = %q", lines[7])
	}
	if lines[8] != "  0123456" {
		t.Errorf("axis = %q", lines[8])
	}
}

func TestRequireAction(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr string
	}{
		{[]string{"-i", "0", "-c", "10"}, ""},
		{[]string{"-i", "-1", "-c", "10"}, ""},
		{[]string{}, "index and cell required"},
		{[]string{"-i", "0"}, "cell (-c) required"},
		{[]string{"-c", "10"}, "index (-i) required"},
	}
	for _, tc := range tests {
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.Int("i", -1, "")
		fs.Int("c", -1, "")
		if err := fs.Parse(tc.args); err != nil {
			t.Fatalf("Parse(%v): %v", tc.args, err)
		}
		err := requireAction(fs)
		if tc.wantErr == "" {
			if err != nil {
				t.Errorf("requireAction(%v) = %v", tc.args, err)
			}
			continue
		}
		if err == nil || err.Error() != tc.wantErr {
			t.Errorf("requireAction(%v) = %v, want %q", tc.args, err, tc.wantErr)
		}
	}
}
