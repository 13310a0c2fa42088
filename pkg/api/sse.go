package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yourusername/gomokuengine/pkg/engine"
)

// SSEEvent represents a Server-Sent Event.
type SSEEvent struct {
	Event string      `json:"event"` // Event type: "move", "result", "error", "done"
	Data  interface{} `json:"data"`  // Event data
}

// searchRequestFromQuery reads a SearchRequest from URL query parameters.
func searchRequestFromQuery(r *http.Request) SearchRequest {
	query := r.URL.Query()
	req := SearchRequest{
		PositionRequest: PositionRequest{
			Position:  query.Get("position"),
			ToMove:    query.Get("to_move"),
			WinLength: parseIntParam(query.Get("win_length"), 0),
		},
		NumMoves: parseIntParam(query.Get("num_moves"), 0),
	}
	if s := query.Get("depth"); s != "" {
		depth := parseIntParam(s, -1)
		req.Depth = &depth
	}
	if row, col := query.Get("last_row"), query.Get("last_col"); row != "" && col != "" {
		m := engine.NewMove(parseIntParam(row, -1), parseIntParam(col, -1))
		req.LastMove = &m
	}
	return req
}

// AnalyzeSSE handles Server-Sent Events for streaming root-move scores.
// GET /api/analyze/stream?position=...&depth=...
//
// One "move" event is sent per root move in generation order, then a
// "result" event with the ranking and a final "done".
func (h *Handlers) AnalyzeSSE(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Flush function for streaming
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	req := searchRequestFromQuery(r)

	release, aerr := h.acquireSlow(r.Context())
	if aerr != nil {
		writeSSEError(w, aerr.msg)
		return
	}
	defer release()

	// Progress callback sends SSE events
	callback := func(ms engine.MoveScore) {
		writeSSEEvent(w, "move", ms)
		flusher.Flush()
	}

	result, aerr := h.analyze(req, callback)
	if aerr != nil {
		writeSSEError(w, aerr.msg)
		return
	}

	// Send final result
	writeSSEEvent(w, "result", result)
	flusher.Flush()

	// Send done event to signal completion
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
