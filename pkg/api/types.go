// Package api provides the HTTP/JSON and WebSocket search service for the
// Gomoku engine.
package api

import (
	"github.com/yourusername/gomokuengine/pkg/engine"
	"github.com/yourusername/gomokuengine/pkg/store"
)

// ============================================================================
// Request Types
// ============================================================================

// PositionRequest identifies a position. Position is either a position ID or
// a text board ("...", ".X.", "..O" joined by '/' or newlines). ToMove,
// LastMove and WinLength only apply to text boards; sending them with a
// position ID is rejected with INVALID_POSITION.
type PositionRequest struct {
	Position  string       `json:"position"`             // Position ID or text board
	ToMove    string       `json:"to_move,omitempty"`    // "max" or "min" (default max)
	LastMove  *engine.Move `json:"last_move,omitempty"`  // Move that produced the board
	WinLength int          `json:"win_length,omitempty"` // Default 5
}

// ApplyRequest is the request body for applying a move.
type ApplyRequest struct {
	PositionRequest
	Move engine.Move `json:"move"`
}

// SearchRequest is the request body for best-move search and analysis.
type SearchRequest struct {
	PositionRequest
	Depth    *int `json:"depth,omitempty"`     // Search depth in plies (default from config)
	NumMoves int  `json:"num_moves,omitempty"` // Max ranked moves to return (0 = all)
}

// ReviewRequest is the request body for rating a played move.
type ReviewRequest struct {
	PositionRequest
	Move  engine.Move `json:"move"`
	Depth *int        `json:"depth,omitempty"`
}

// ============================================================================
// Response Types
// ============================================================================

// PositionResponse describes a position and its game status.
type PositionResponse struct {
	PositionID  string        `json:"position_id"`
	Board       []string      `json:"board"`                  // Rows of '.', 'X', 'O'
	Size        int           `json:"size"`                   // Board edge length
	WinLength   int           `json:"win_length"`             // Stones in a row to win
	ToMove      string        `json:"to_move"`                // "max" or "min"
	LastMove    *engine.Move  `json:"last_move,omitempty"`    // Absent before the first move
	Terminal    bool          `json:"terminal"`               // Game over
	Winner      string        `json:"winner,omitempty"`       // "max" or "min" when won
	Utility     *int          `json:"utility,omitempty"`      // +1, -1 or 0 when terminal
	WinningLine []engine.Move `json:"winning_line,omitempty"` // Stones of the winning line
}

// LegalResponse lists the candidate moves of a position.
type LegalResponse struct {
	PositionID string        `json:"position_id"`
	Moves      []engine.Move `json:"moves"`
	Count      int           `json:"count"`
}

// EvaluateResponse is the static score of a position.
type EvaluateResponse struct {
	PositionID string `json:"position_id"`
	Score      int    `json:"score"` // Positive favours Max
	Exact      bool   `json:"exact"` // True when Score is the terminal utility
}

// BestResponse is the result of a best-move search.
type BestResponse struct {
	ID          string       `json:"id,omitempty"` // Stored analysis ID
	PositionID  string       `json:"position_id"`
	Depth       int          `json:"depth"`
	HasMove     bool         `json:"has_move"`
	Move        *engine.Move `json:"move,omitempty"`
	Score       int          `json:"score"`
	Nodes       int64        `json:"nodes"`
	Evaluations int64        `json:"evaluations"`
	Terminals   int64        `json:"terminals"`
	ElapsedMs   int64        `json:"elapsed_ms"`
}

// AnalyzeResponse ranks every root move.
type AnalyzeResponse struct {
	PositionID string             `json:"position_id"`
	Depth      int                `json:"depth"`
	Moves      []engine.MoveScore `json:"moves"`     // Best first for the side to move
	BestMove   engine.Move        `json:"best_move"` // Same choice as /api/best
	BestScore  int                `json:"best_score"`
	NumMoves   int                `json:"num_moves"` // Total legal root moves
	Nodes      int64              `json:"nodes"`
	ElapsedMs  int64              `json:"elapsed_ms"`
}

// ReviewResponse rates a played move against the ranked alternatives.
type ReviewResponse struct {
	PositionID string `json:"position_id"`
	Depth      int    `json:"depth"`
	SkillStr   string `json:"skill_str"`
	*engine.MoveReview
}

// AnalysesResponse lists stored analyses.
type AnalysesResponse struct {
	Analyses []*store.Analysis `json:"analyses"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error   string `json:"error"`             // Error message
	Code    string `json:"code,omitempty"`    // Error code
	Details string `json:"details,omitempty"` // Additional details
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status   string     `json:"status"`         // "ok" or "error"
	Version  string     `json:"version"`        // Engine version
	Ready    bool       `json:"ready"`          // Whether an engine is configured
	MaxDepth int        `json:"max_depth"`      // Deepest search accepted
	Storage  bool       `json:"storage"`        // Whether results are persisted
	Pool     *PoolStats `json:"pool,omitempty"` // Worker pool statistics
}

// NewPositionResponse describes p.
func NewPositionResponse(p *engine.Position, id string) *PositionResponse {
	resp := &PositionResponse{
		PositionID: id,
		Board:      boardRows(p),
		Size:       p.Size(),
		WinLength:  p.WinLength(),
		ToMove:     p.ToMove().String(),
		Terminal:   p.IsTerminal(),
	}
	if last, ok := p.LastMove(); ok {
		resp.LastMove = &last
	}
	if resp.Terminal {
		if u, err := p.Utility(); err == nil {
			resp.Utility = &u
		}
		if winner, ok := p.Winner(); ok {
			resp.Winner = winner.String()
			resp.WinningLine = p.WinningLine()
		}
	}
	return resp
}

func boardRows(p *engine.Position) []string {
	rows := make([]string, p.Size())
	for r := range rows {
		row := make([]byte, p.Size())
		for c := range row {
			row[c] = p.At(r, c).String()[0]
		}
		rows[r] = string(row)
	}
	return rows
}
