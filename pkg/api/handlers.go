package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/yourusername/gomokuengine/internal/positionid"
	"github.com/yourusername/gomokuengine/pkg/engine"
	"github.com/yourusername/gomokuengine/pkg/store"
)

const (
	// DefaultSearchDepth is used when a request does not name a depth.
	DefaultSearchDepth = 2
	// DefaultMaxDepth bounds the work a single request can ask for.
	DefaultMaxDepth = 4
	// maxRecentAnalyses caps GET /api/analyses.
	maxRecentAnalyses = 100
)

// Handlers holds the HTTP handlers and engine reference.
type Handlers struct {
	engine       *engine.MinimaxEngine
	version      string
	pool         *WorkerPool
	store        *store.Store
	defaultDepth int
	maxDepth     int
	log          zerolog.Logger
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(e *engine.MinimaxEngine, version string) *Handlers {
	return &Handlers{
		engine:       e,
		version:      version,
		defaultDepth: DefaultSearchDepth,
		maxDepth:     DefaultMaxDepth,
		log:          zerolog.Nop(),
	}
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(e *engine.MinimaxEngine, version string, pool *WorkerPool) *Handlers {
	h := NewHandlers(e, version)
	h.pool = pool
	return h
}

// WithStore persists best-move results to s.
func (h *Handlers) WithStore(s *store.Store) *Handlers {
	h.store = s
	return h
}

// WithDepthLimits sets the default and maximum search depth.
// Non-positive values keep the current setting.
func (h *Handlers) WithDepthLimits(defaultDepth, maxDepth int) *Handlers {
	if maxDepth > 0 {
		h.maxDepth = maxDepth
	}
	if defaultDepth > 0 {
		h.defaultDepth = defaultDepth
	}
	if h.defaultDepth > h.maxDepth {
		h.defaultDepth = h.maxDepth
	}
	return h
}

// WithLogger sets the logger used for search and storage events.
func (h *Handlers) WithLogger(l zerolog.Logger) *Handlers {
	h.log = l
	return h
}

// apiError is a failed request, rendered as an ErrorResponse.
type apiError struct {
	status int
	code   string
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func badRequest(code, msg string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: code, msg: msg}
}

// engineError maps engine errors to API errors.
func engineError(err error) *apiError {
	switch {
	case errors.Is(err, engine.ErrIllegalMove):
		return badRequest("ILLEGAL_MOVE", err.Error())
	case errors.Is(err, engine.ErrIllegalState):
		return &apiError{status: http.StatusConflict, code: "ILLEGAL_STATE", msg: err.Error()}
	case errors.Is(err, engine.ErrInvalidArgument):
		return badRequest("INVALID_POSITION", err.Error())
	}
	return &apiError{status: http.StatusInternalServerError, code: "SEARCH_ERROR", msg: err.Error()}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

func writeAPIError(w http.ResponseWriter, err *apiError) {
	writeError(w, err.status, err.msg, err.code)
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) *apiError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("INVALID_JSON", "invalid JSON")
	}
	return nil
}

// parsePosition builds a position from a request.
func parsePosition(req PositionRequest) (*engine.Position, string, *apiError) {
	if strings.TrimSpace(req.Position) == "" {
		return nil, "", badRequest("MISSING_POSITION", "position is required")
	}
	if !positionid.IsTextBoard(req.Position) && (req.ToMove != "" || req.LastMove != nil || req.WinLength != 0) {
		return nil, "", badRequest("INVALID_POSITION",
			"to_move, last_move and win_length only apply to text boards; a position ID carries its own")
	}

	toMove := engine.Max
	if req.ToMove != "" {
		p, err := engine.ParsePlayer(req.ToMove)
		if err != nil {
			return nil, "", badRequest("INVALID_POSITION", err.Error())
		}
		toMove = p
	}
	winLength := req.WinLength
	if winLength == 0 {
		winLength = engine.DefaultWinLength
	}

	p, err := positionid.Parse(req.Position, toMove, req.LastMove, winLength)
	if err != nil {
		return nil, "", badRequest("INVALID_POSITION", fmt.Sprintf("invalid position: %v", err))
	}
	id, err := positionid.PositionID(p)
	if err != nil {
		return nil, "", badRequest("INVALID_POSITION", err.Error())
	}
	return p, id, nil
}

// searchDepth resolves the requested depth against the configured limits.
func (h *Handlers) searchDepth(requested *int, minDepth int) (int, *apiError) {
	depth := h.defaultDepth
	if requested != nil {
		depth = *requested
	}
	if depth < minDepth || depth > h.maxDepth {
		return 0, badRequest("INVALID_DEPTH",
			fmt.Sprintf("depth must be between %d and %d, got %d", minDepth, h.maxDepth, depth))
	}
	return depth, nil
}

func (h *Handlers) acquireFast(ctx context.Context) (func(), *apiError) {
	if h.pool == nil {
		return func() {}, nil
	}
	if err := h.pool.AcquireFast(ctx); err != nil {
		return nil, &apiError{status: http.StatusServiceUnavailable, code: "SERVER_BUSY", msg: "server busy"}
	}
	return h.pool.ReleaseFast, nil
}

func (h *Handlers) acquireSlow(ctx context.Context) (func(), *apiError) {
	if h.pool == nil {
		return func() {}, nil
	}
	if err := h.pool.AcquireSlow(ctx); err != nil {
		return nil, &apiError{status: http.StatusServiceUnavailable, code: "SERVER_BUSY", msg: "server busy"}
	}
	return h.pool.ReleaseSlow, nil
}

func (h *Handlers) requireEngine() *apiError {
	if h.engine == nil {
		return &apiError{status: http.StatusServiceUnavailable, code: "NOT_READY", msg: "engine not configured"}
	}
	return nil
}

// ============================================================================
// Operations shared by HTTP and WebSocket
// ============================================================================

func (h *Handlers) legal(req PositionRequest) (*LegalResponse, *apiError) {
	p, id, aerr := parsePosition(req)
	if aerr != nil {
		return nil, aerr
	}
	moves := p.LegalMoves()
	if p.IsTerminal() {
		moves = []engine.Move{}
	}
	return &LegalResponse{PositionID: id, Moves: moves, Count: len(moves)}, nil
}

func (h *Handlers) apply(req ApplyRequest) (*PositionResponse, *apiError) {
	p, _, aerr := parsePosition(req.PositionRequest)
	if aerr != nil {
		return nil, aerr
	}
	if p.IsTerminal() {
		return nil, engineError(fmt.Errorf("%w: game is already over", engine.ErrIllegalState))
	}
	next, err := p.ApplyMove(req.Move)
	if err != nil {
		return nil, engineError(err)
	}
	id, err := positionid.PositionID(next)
	if err != nil {
		return nil, engineError(err)
	}
	return NewPositionResponse(next, id), nil
}

func (h *Handlers) evaluate(req PositionRequest) (*EvaluateResponse, *apiError) {
	if aerr := h.requireEngine(); aerr != nil {
		return nil, aerr
	}
	p, id, aerr := parsePosition(req)
	if aerr != nil {
		return nil, aerr
	}
	if p.IsTerminal() {
		u, err := p.Utility()
		if err != nil {
			return nil, engineError(err)
		}
		return &EvaluateResponse{PositionID: id, Score: u, Exact: true}, nil
	}
	return &EvaluateResponse{PositionID: id, Score: h.engine.Evaluator().Evaluate(p)}, nil
}

func (h *Handlers) best(ctx context.Context, req SearchRequest) (*BestResponse, *apiError) {
	if aerr := h.requireEngine(); aerr != nil {
		return nil, aerr
	}
	p, id, aerr := parsePosition(req.PositionRequest)
	if aerr != nil {
		return nil, aerr
	}
	depth, aerr := h.searchDepth(req.Depth, 0)
	if aerr != nil {
		return nil, aerr
	}

	result, stats, err := h.engine.FindBestMoveStats(p, depth)
	if err != nil {
		return nil, engineError(err)
	}

	resp := &BestResponse{
		PositionID:  id,
		Depth:       depth,
		HasMove:     result.HasMove,
		Score:       result.Score,
		Nodes:       stats.Nodes,
		Evaluations: stats.Evaluations,
		Terminals:   stats.Terminals,
		ElapsedMs:   stats.Elapsed.Milliseconds(),
	}
	if result.HasMove {
		m := result.Move
		resp.Move = &m
	}

	h.log.Info().
		Str("position", id).
		Int("depth", depth).
		Bool("has_move", result.HasMove).
		Stringer("move", result.Move).
		Int("score", result.Score).
		Int64("nodes", stats.Nodes).
		Dur("elapsed", stats.Elapsed).
		Msg("search complete")

	if h.store != nil {
		a := &store.Analysis{
			PositionID: id,
			Depth:      depth,
			HasMove:    result.HasMove,
			Move:       result.Move,
			Score:      result.Score,
			Nodes:      stats.Nodes,
			Elapsed:    stats.Elapsed,
		}
		if err := h.store.Save(ctx, a); err != nil {
			h.log.Warn().Err(err).Str("position", id).Msg("failed to store analysis")
		} else {
			resp.ID = a.ID
		}
	}
	return resp, nil
}

func (h *Handlers) analyze(req SearchRequest, progress func(engine.MoveScore)) (*AnalyzeResponse, *apiError) {
	if aerr := h.requireEngine(); aerr != nil {
		return nil, aerr
	}
	p, id, aerr := parsePosition(req.PositionRequest)
	if aerr != nil {
		return nil, aerr
	}
	depth, aerr := h.searchDepth(req.Depth, 1)
	if aerr != nil {
		return nil, aerr
	}

	analysis, err := h.engine.AnalyzeMoves(p, depth, progress)
	if err != nil {
		return nil, engineError(err)
	}

	moves := analysis.Moves
	if req.NumMoves > 0 && req.NumMoves < len(moves) {
		moves = moves[:req.NumMoves]
	}
	return &AnalyzeResponse{
		PositionID: id,
		Depth:      depth,
		Moves:      moves,
		BestMove:   analysis.BestMove,
		BestScore:  analysis.BestScore,
		NumMoves:   analysis.NumMoves,
		Nodes:      analysis.Stats.Nodes,
		ElapsedMs:  analysis.Stats.Elapsed.Milliseconds(),
	}, nil
}

func (h *Handlers) review(req ReviewRequest) (*ReviewResponse, *apiError) {
	if aerr := h.requireEngine(); aerr != nil {
		return nil, aerr
	}
	p, id, aerr := parsePosition(req.PositionRequest)
	if aerr != nil {
		return nil, aerr
	}
	depth, aerr := h.searchDepth(req.Depth, 1)
	if aerr != nil {
		return nil, aerr
	}

	mr, err := h.engine.ReviewMove(p, req.Move, depth)
	if err != nil {
		return nil, engineError(err)
	}
	return &ReviewResponse{
		PositionID: id,
		Depth:      depth,
		SkillStr:   mr.Skill.String(),
		MoveReview: mr,
	}, nil
}

// ============================================================================
// HTTP handlers
// ============================================================================

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Ready:    h.engine != nil,
		MaxDepth: h.maxDepth,
		Storage:  h.store != nil,
	}

	// Include pool stats if available
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// Legal handles POST /api/legal
func (h *Handlers) Legal(w http.ResponseWriter, r *http.Request) {
	release, aerr := h.acquireFast(r.Context())
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	defer release()

	var req PositionRequest
	if aerr := decodeJSON(r, &req); aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	resp, aerr := h.legal(req)
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Apply handles POST /api/apply
func (h *Handlers) Apply(w http.ResponseWriter, r *http.Request) {
	release, aerr := h.acquireFast(r.Context())
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	defer release()

	var req ApplyRequest
	if aerr := decodeJSON(r, &req); aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	resp, aerr := h.apply(req)
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Evaluate handles POST /api/evaluate
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	release, aerr := h.acquireFast(r.Context())
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	defer release()

	var req PositionRequest
	if aerr := decodeJSON(r, &req); aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	resp, aerr := h.evaluate(req)
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Best handles POST /api/best
func (h *Handlers) Best(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if aerr := decodeJSON(r, &req); aerr != nil {
		writeAPIError(w, aerr)
		return
	}

	// Searches share the slow slots
	release, aerr := h.acquireSlow(r.Context())
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	defer release()

	resp, aerr := h.best(r.Context(), req)
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Analyze handles POST /api/analyze
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if aerr := decodeJSON(r, &req); aerr != nil {
		writeAPIError(w, aerr)
		return
	}

	release, aerr := h.acquireSlow(r.Context())
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	defer release()

	resp, aerr := h.analyze(req, nil)
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Review handles POST /api/review
func (h *Handlers) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if aerr := decodeJSON(r, &req); aerr != nil {
		writeAPIError(w, aerr)
		return
	}

	release, aerr := h.acquireSlow(r.Context())
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	defer release()

	resp, aerr := h.review(req)
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAnalysis handles GET /api/analyses/{id}
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotFound, "storage is disabled", "NOT_FOUND")
		return
	}

	id := chi.URLParam(r, "id")
	a, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("loading analysis")
		writeError(w, http.StatusInternalServerError, "failed to load analysis", "STORAGE_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListAnalyses handles GET /api/analyses?limit=N
func (h *Handlers) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, AnalysesResponse{Analyses: []*store.Analysis{}})
		return
	}

	limit := parseIntParam(r.URL.Query().Get("limit"), 20)
	if limit <= 0 || limit > maxRecentAnalyses {
		limit = maxRecentAnalyses
	}
	list, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("listing analyses")
		writeError(w, http.StatusInternalServerError, "failed to list analyses", "STORAGE_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, AnalysesResponse{Analyses: list})
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}
