package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourusername/bbengine/pkg/engine"
)

const startID = "BCDEFDyz0120"

// getTestEngine returns an engine with the default rules and no logging
func getTestEngine() *engine.Engine {
	eng, _ := engine.NewEngine(engine.EngineOptions{})
	return eng
}

// postJSON runs a handler on a JSON body and returns the recorder.
func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if s, ok := body.(string); ok {
		data = []byte(s)
	} else {
		data, _ = json.Marshal(body)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Result().Body).Decode(v); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
}

func TestHealthHandler(t *testing.T) {
	h := NewHandlers(nil, "test-version")

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Health status = %d, want %d", w.Code, http.StatusOK)
	}

	var health HealthResponse
	decodeBody(t, w, &health)
	if health.Status != "ok" {
		t.Errorf("Status = %q, want %q", health.Status, "ok")
	}
	if health.Version != "test-version" {
		t.Errorf("Version = %q, want %q", health.Version, "test-version")
	}
	if health.Ready || health.Cache != nil {
		t.Errorf("nil engine reported %+v", health)
	}
}

func TestHealthHandlerReady(t *testing.T) {
	h := NewHandlersWithPool(getTestEngine(), "1.0.0", NewWorkerPool(DefaultPoolConfig()))

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest("GET", "/api/health", nil))

	var health HealthResponse
	decodeBody(t, w, &health)
	if !health.Ready {
		t.Error("Expected ready = true when engine is set")
	}
	if health.Pool == nil || health.Pool.MaxFast != 100 {
		t.Errorf("pool = %+v", health.Pool)
	}
	if health.Cache == nil || health.Cache.Size == 0 {
		t.Errorf("cache = %+v", health.Cache)
	}
}

func TestActionsHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	tests := []struct {
		name        string
		body        interface{}
		wantStatus  int
		wantCode    string
		wantActions int
	}{
		{"white at start", ActionsRequest{Position: startID}, http.StatusOK, "", 18},
		{"black at start", ActionsRequest{Position: startID, Side: "black"}, http.StatusOK, "", 18},
		{"cell list", ActionsRequest{Position: "1,2,3,4,5,3,50,51,52,53,54,52", Side: "1"}, http.StatusOK, "", 18},
		{"missing position", ActionsRequest{}, http.StatusBadRequest, "MISSING_POSITION", 0},
		{"invalid position", ActionsRequest{Position: "invalid!!!"}, http.StatusBadRequest, "INVALID_POSITION", 0},
		{"invalid side", ActionsRequest{Position: startID, Side: "green"}, http.StatusBadRequest, "INVALID_SIDE", 0},
		{"invalid json", "not json", http.StatusBadRequest, "INVALID_JSON", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, h.Actions, "/api/actions", tc.body)
			if w.Code != tc.wantStatus {
				t.Fatalf("Status = %d, want %d: %s", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantCode != "" {
				var errResp ErrorResponse
				decodeBody(t, w, &errResp)
				if errResp.Code != tc.wantCode {
					t.Errorf("Code = %q, want %q", errResp.Code, tc.wantCode)
				}
				return
			}
			var resp ActionsResponse
			decodeBody(t, w, &resp)
			if resp.NumActions != tc.wantActions || len(resp.Actions) != tc.wantActions {
				t.Errorf("actions = %d, want %d", resp.NumActions, tc.wantActions)
			}
			if !resp.Valid || resp.Terminal {
				t.Errorf("flags = valid %v terminal %v", resp.Valid, resp.Terminal)
			}
		})
	}
}

func TestActionsHandlerTerminal(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")
	w := postJSON(t, h.Actions, "/api/actions", ActionsRequest{Position: "0,1,2,3,49,49,50,51,52,53,54,52"})

	var resp ActionsResponse
	decodeBody(t, w, &resp)
	if !resp.Terminal || resp.Winner != "WHITE" {
		t.Errorf("terminal = %v, winner = %q", resp.Terminal, resp.Winner)
	}
}

func TestValidateHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	tests := []struct {
		name      string
		req       ValidateRequest
		wantValid bool
		wantCode  string
	}{
		{"knight jump", ValidateRequest{Position: startID, Index: 0, Cell: 10}, true, ""},
		{"not a knight jump", ValidateRequest{Position: startID, Index: 0, Cell: 11}, false, "NOT_A_KNIGHT_MOVE"},
		{"off board", ValidateRequest{Position: startID, Index: 0, Cell: 56}, false, "OUT_OF_BOUNDS"},
		{"last block pinned", ValidateRequest{Position: startID, Index: 4, Cell: 20}, false, "BALL_CARRIER_IMMOBILE"},
		{"pass", ValidateRequest{Position: startID, Side: "black", Index: 5, Cell: 50}, true, ""},
		{"pass to empty", ValidateRequest{Position: startID, Index: 5, Cell: 10}, false, "BALL_TARGET_INVALID"},
		{"unknown piece", ValidateRequest{Position: startID, Index: 9, Cell: 10}, false, "UNKNOWN_PIECE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, h.Validate, "/api/validate", tc.req)
			if w.Code != http.StatusOK {
				t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
			}
			var resp ValidateResponse
			decodeBody(t, w, &resp)
			if resp.Valid != tc.wantValid || resp.Code != tc.wantCode {
				t.Errorf("got %+v, want valid=%v code=%q", resp, tc.wantValid, tc.wantCode)
			}
			if !resp.Valid && resp.Error == "" {
				t.Error("rejection without message")
			}
		})
	}
}

func TestPlayHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	w := postJSON(t, h.Play, "/api/play", PlayRequest{Seed: 7, MaxRounds: 500})
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
	}

	var resp PlayResponse
	decodeBody(t, w, &resp)
	if resp.GameID == "" {
		t.Error("missing game id")
	}
	if len(resp.Turns) == 0 || resp.Turns[0].Position != startID || resp.Turns[0].Side != "WHITE" {
		t.Fatalf("turns = %+v", resp.Turns)
	}
	switch resp.Winner {
	case "WHITE", "BLACK":
		if resp.Round != resp.Turns[len(resp.Turns)-1].Round {
			t.Errorf("round %d, last turn %d", resp.Round, resp.Turns[len(resp.Turns)-1].Round)
		}
	case "NONE":
		if len(resp.Turns) != 500 {
			t.Errorf("cut-off game has %d turns", len(resp.Turns))
		}
	default:
		t.Errorf("winner = %q", resp.Winner)
	}

	// same seed, same game
	again := postJSON(t, h.Play, "/api/play", PlayRequest{Seed: 7, MaxRounds: 500})
	var resp2 PlayResponse
	decodeBody(t, again, &resp2)
	if resp2.Final != resp.Final || len(resp2.Turns) != len(resp.Turns) || resp2.GameID == resp.GameID {
		t.Errorf("replay differs: %s/%d vs %s/%d", resp2.Final, len(resp2.Turns), resp.Final, len(resp.Turns))
	}
}

func TestPlayHandlerTerminalStart(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")
	pos := "0,1,2,3,49,49,50,51,52,53,54,52"

	w := postJSON(t, h.Play, "/api/play", PlayRequest{Position: pos, Seed: 1})
	var resp PlayResponse
	decodeBody(t, w, &resp)
	if resp.Winner != "WHITE" || len(resp.Turns) != 0 || resp.Round != -1 {
		t.Errorf("resp = %+v", resp)
	}

	bad := postJSON(t, h.Play, "/api/play", PlayRequest{Position: "1,1,3,4,5,3,50,51,52,53,54,52"})
	if bad.Code != http.StatusBadRequest {
		t.Errorf("illegal start: status %d", bad.Code)
	}
}

func TestSelfPlayHandler(t *testing.T) {
	h := NewHandlersWithPool(getTestEngine(), "1.0.0", NewWorkerPool(DefaultPoolConfig()))

	w := postJSON(t, h.SelfPlay, "/api/selfplay", SelfPlayRequest{Games: 10, Workers: 2, Seed: 3, MaxRounds: 300})
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
	}
	var resp SelfPlayResponse
	decodeBody(t, w, &resp)
	if resp.Games != 10 || resp.WhiteWins+resp.BlackWins+resp.Unfinished != 10 {
		t.Errorf("resp = %+v", resp)
	}
	if stats := h.pool.Stats(); stats.TotalSlow != 1 || stats.ActiveSlow != 0 {
		t.Errorf("pool = %+v", stats)
	}

	tooMany := postJSON(t, h.SelfPlay, "/api/selfplay", SelfPlayRequest{Games: maxSelfPlayGames + 1})
	if tooMany.Code != http.StatusBadRequest {
		t.Errorf("too many games: status %d", tooMany.Code)
	}
}

func TestSelfPlaySSE(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	req := httptest.NewRequest("GET", "/api/selfplay/stream?games=10&workers=2&seed=4&max_rounds=300", nil)
	w := httptest.NewRecorder()
	h.SelfPlaySSE(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	events := parseSSE(t, w.Body.String())
	if len(events) < 3 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Event != "progress" {
		t.Errorf("first event = %q", events[0].Event)
	}
	if events[len(events)-2].Event != "result" || events[len(events)-1].Event != "done" {
		t.Errorf("stream ends with %q, %q", events[len(events)-2].Event, events[len(events)-1].Event)
	}

	var result SelfPlayResponse
	raw, _ := json.Marshal(events[len(events)-2].Data)
	json.Unmarshal(raw, &result)
	if result.Games != 10 {
		t.Errorf("result = %+v", result)
	}
}

func TestSelfPlaySSEBadGames(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")
	w := httptest.NewRecorder()
	h.SelfPlaySSE(w, httptest.NewRequest("GET", "/api/selfplay/stream?games=-3", nil))

	events := parseSSE(t, w.Body.String())
	if len(events) != 1 || events[0].Event != "error" {
		t.Errorf("events = %+v", events)
	}
}

// parseSSE splits a recorded event stream into events.
func parseSSE(t *testing.T, body string) []SSEEvent {
	t.Helper()
	var events []SSEEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var ev SSEEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.Event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev.Data); err != nil {
					t.Fatalf("bad data line %q: %v", line, err)
				}
			}
		}
		events = append(events, ev)
	}
	return events
}

func TestHandlersServerBusy(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 1, MaxSlowWorkers: 1})
	h := NewHandlersWithPool(getTestEngine(), "1.0.0", pool)

	if !pool.TryAcquire(Fast) {
		t.Fatal("could not fill pool")
	}
	defer pool.Release(Fast)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data, _ := json.Marshal(ActionsRequest{Position: startID})
	req := httptest.NewRequest("POST", "/api/actions", bytes.NewReader(data)).WithContext(ctx)
	w := httptest.NewRecorder()
	h.Actions(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want 503", w.Code)
	}
	var errResp ErrorResponse
	decodeBody(t, w, &errResp)
	if errResp.Code != "SERVER_BUSY" {
		t.Errorf("Code = %q", errResp.Code)
	}
}

func TestServerRoutes(t *testing.T) {
	s := NewServer(getTestEngine(), DefaultConfig(), "test")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	// wrong method on a POST route
	resp, err = http.Get(ts.URL + "/api/actions")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/actions status = %d", resp.StatusCode)
	}

	body, _ := json.Marshal(ValidateRequest{Position: startID, Index: 0, Cell: 10})
	resp, err = http.Post(ts.URL+"/api/validate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var v ValidateResponse
	json.NewDecoder(resp.Body).Decode(&v)
	if !v.Valid {
		t.Errorf("validate through server = %+v", v)
	}
}
