package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yourusername/bbengine/pkg/engine"
)

// SSEEvent represents a Server-Sent Event.
type SSEEvent struct {
	Event string      `json:"event"` // Event type: "progress", "result", "error", "done"
	Data  interface{} `json:"data"`  // Event data
}

// SelfPlaySSE streams self-play progress as Server-Sent Events.
// GET /api/selfplay/stream?games=...&workers=...&seed=...&max_rounds=...
func (h *Handlers) SelfPlaySSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	if h.pool != nil {
		if err := h.pool.Acquire(r.Context(), Slow); err != nil {
			writeSSEError(w, "server busy")
			return
		}
		defer h.pool.Release(Slow)
	}

	query := r.URL.Query()
	games := parseIntParam(query.Get("games"), 100)
	if games <= 0 || games > maxSelfPlayGames {
		writeSSEError(w, fmt.Sprintf("games must be between 1 and %d", maxSelfPlayGames))
		return
	}
	opts := engine.SelfPlayOptions{
		Games:     games,
		Workers:   parseIntParam(query.Get("workers"), 0),
		Seed:      parseInt64Param(query.Get("seed"), 0),
		MaxRounds: parseIntParam(query.Get("max_rounds"), 0),
	}

	callback := func(p engine.SelfPlayProgress) {
		writeSSEEvent(w, "progress", SelfPlayProgressResponse{
			GamesCompleted: p.GamesCompleted,
			GamesTotal:     p.GamesTotal,
			Percent:        p.Percent,
			WhiteWinRate:   p.WhiteWinRate * 100,
		})
		flusher.Flush()
	}

	result, err := h.engine.SelfPlayWithProgress(opts, nil, callback)
	if err != nil {
		writeSSEError(w, "self-play failed: "+err.Error())
		return
	}

	writeSSEEvent(w, "result", SelfPlayToResponse(result))
	flusher.Flush()

	writeSSEEvent(w, "done", nil)
	flusher.Flush()
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	return int(parseInt64Param(s, int64(defaultVal)))
}

func parseInt64Param(s string, defaultVal int64) int64 {
	if s == "" {
		return defaultVal
	}
	var val int64
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return defaultVal
	}
	return val
}
