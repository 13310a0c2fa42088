package engine

import (
	"fmt"
	"math"
	"time"
)

// Evaluator estimates the value of a non-terminal position.
// Positive scores favour Max, negative scores favour Min.
// Implementations must not modify the position.
type Evaluator interface {
	Evaluate(p *Position) int
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc func(p *Position) int

// Evaluate calls f(p).
func (f EvaluatorFunc) Evaluate(p *Position) int {
	return f(p)
}

// SearchStats counts the work done by a single search.
type SearchStats struct {
	Nodes       int64         // Positions visited, root included
	Evaluations int64         // Depth-limit leaves scored by the evaluator
	Terminals   int64         // Terminal positions scored by utility
	Elapsed     time.Duration // Wall time of the search
}

// MinimaxEngine runs plain fixed-depth minimax over Positions.
// It holds no mutable state and may be shared between goroutines as long as
// the evaluator is safe for concurrent use.
type MinimaxEngine struct {
	evaluator Evaluator
}

// NewMinimaxEngine creates a search engine that scores depth-limited leaves with ev.
func NewMinimaxEngine(ev Evaluator) (*MinimaxEngine, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: evaluator cannot be nil", ErrInvalidArgument)
	}
	return &MinimaxEngine{evaluator: ev}, nil
}

// Evaluator returns the heuristic used at the depth limit.
func (e *MinimaxEngine) Evaluator() Evaluator {
	return e.evaluator
}

// FindBestMove searches depth plies ahead of root and returns the best move
// for the player to act together with its minimax score.
func (e *MinimaxEngine) FindBestMove(root *Position, depth int) (SearchResult, error) {
	result, _, err := e.FindBestMoveStats(root, depth)
	return result, err
}

// FindBestMoveStats is FindBestMove that also reports search statistics.
func (e *MinimaxEngine) FindBestMoveStats(root *Position, depth int) (SearchResult, SearchStats, error) {
	if err := validateSearch(root, depth); err != nil {
		return SearchResult{}, SearchStats{}, err
	}

	s := &searcher{evaluator: e.evaluator}
	start := time.Now()
	result, err := s.minimax(root, depth)
	s.stats.Elapsed = time.Since(start)
	if err != nil {
		return SearchResult{}, s.stats, err
	}
	return result, s.stats, nil
}

func validateSearch(root *Position, depth int) error {
	if root == nil {
		return fmt.Errorf("%w: root position cannot be nil", ErrInvalidArgument)
	}
	if depth < 0 {
		return fmt.Errorf("%w: depth must be >= 0, got %d", ErrInvalidArgument, depth)
	}
	return nil
}

// searcher carries the per-call counters so the engine itself stays immutable.
type searcher struct {
	evaluator Evaluator
	stats     SearchStats
}

func (s *searcher) minimax(p *Position, depth int) (SearchResult, error) {
	s.stats.Nodes++

	// Terminal: exact utility, heuristic not consulted
	if p.IsTerminal() {
		s.stats.Terminals++
		u, err := p.Utility()
		if err != nil {
			return SearchResult{}, err
		}
		return SearchResult{Score: u}, nil
	}

	// Depth limit: heuristic estimate
	if depth == 0 {
		s.stats.Evaluations++
		return SearchResult{Score: s.evaluator.Evaluate(p)}, nil
	}

	moves := p.LegalMoves()
	if len(moves) == 0 {
		return SearchResult{Score: 0}, nil
	}

	maximizing := p.toMove == Max
	best := SearchResult{Score: math.MaxInt}
	if maximizing {
		best.Score = math.MinInt
	}

	for _, m := range moves {
		child, err := p.ApplyMove(m)
		if err != nil {
			return SearchResult{}, err
		}
		r, err := s.minimax(child, depth-1)
		if err != nil {
			return SearchResult{}, err
		}

		// Strict comparison: the first move reaching the best score is kept
		if (maximizing && r.Score > best.Score) || (!maximizing && r.Score < best.Score) {
			best = SearchResult{Move: m, HasMove: true, Score: r.Score}
		}
	}

	return best, nil
}
