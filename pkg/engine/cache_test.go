package engine

import (
	"sync"
	"testing"
)

func TestActionCacheSize(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0, 2},
		{1, 2},
		{3, 4},
		{1000, 1024},
		{1 << 30, 1 << 24},
	}
	for _, tc := range tests {
		if got := NewActionCache(tc.in).Stats().Size; got != tc.want {
			t.Errorf("NewActionCache(%d) size = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestActionCacheLookup(t *testing.T) {
	c := NewActionCache(64)
	b := StartingPosition()
	actions := GenerateActions(b, White)

	if _, ok := c.Lookup(b.Key(), White); ok {
		t.Fatal("hit on empty cache")
	}
	c.Add(b.Key(), White, actions)

	got, ok := c.Lookup(b.Key(), White)
	if !ok || len(got) != len(actions) {
		t.Fatalf("Lookup = %v, %v", got, ok)
	}
	// sides are cached separately
	if _, ok := c.Lookup(b.Key(), Black); ok {
		t.Error("white entry returned for black")
	}

	// callers own the returned slice
	got[0] = Action{Index: 4, Cell: 0}
	again, _ := c.Lookup(b.Key(), White)
	if again[0] != actions[0] {
		t.Error("modifying a lookup result changed the cache")
	}

	s := c.Stats()
	if s.Lookups != 4 || s.Hits != 2 || s.Adds != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.HitRate != 50 {
		t.Errorf("hit rate = %v, want 50", s.HitRate)
	}

	c.Flush()
	if _, ok := c.Lookup(b.Key(), White); ok {
		t.Error("hit after Flush")
	}
}

func TestEngineLegalActionsCached(t *testing.T) {
	e, err := NewEngine(EngineOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b := StartingPosition()
	first := e.LegalActions(b, White)
	second := e.LegalActions(b, White)
	if len(first) != len(second) || len(first) != 18 {
		t.Fatalf("LegalActions = %d, %d actions", len(first), len(second))
	}
	if s := e.CacheStats(); s.Hits != 1 {
		t.Errorf("stats = %+v, want one hit", s)
	}

	disabled, _ := NewEngine(EngineOptions{CacheSize: -1})
	if got := disabled.LegalActions(b, White); len(got) != 18 {
		t.Errorf("uncached LegalActions = %d actions", len(got))
	}
	if s := disabled.CacheStats(); s.Size != 0 {
		t.Errorf("disabled cache stats = %+v", s)
	}
}

func TestActionCacheConcurrent(t *testing.T) {
	c := NewActionCache(128)
	boards := sampleBoards(t, 20)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, b := range boards {
				if _, ok := c.Lookup(b.Key(), White); !ok {
					c.Add(b.Key(), White, GenerateActions(b, White))
				}
			}
		}()
	}
	wg.Wait()

	if s := c.Stats(); s.Lookups != 80 {
		t.Errorf("lookups = %d, want 80", s.Lookups)
	}
}

func TestNewEngineRejectsNegativeRounds(t *testing.T) {
	if _, err := NewEngine(EngineOptions{MaxRounds: -1}); err == nil {
		t.Error("expected error for negative MaxRounds")
	}
}
