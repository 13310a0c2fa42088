package engine

import (
	"fmt"
	"sort"
	"time"
)

// AnalysisResult contains every root move scored by minimax
type AnalysisResult struct {
	Moves     []MoveScore // All root moves ranked best first for the side to move
	BestMove  Move        // Same choice FindBestMove makes
	BestScore int
	NumMoves  int // Total number of legal root moves
	Stats     SearchStats
}

// AnalyzeMoves scores each legal root move by searching its child depth-1
// plies deep. progress, when non-nil, is called once per root move in
// generation order as soon as that move is scored.
//
// The ranking is stable, so among equal scores the earliest generated move
// comes first and Moves[0] matches FindBestMove.
func (e *MinimaxEngine) AnalyzeMoves(root *Position, depth int, progress func(MoveScore)) (*AnalysisResult, error) {
	if err := validateSearch(root, depth); err != nil {
		return nil, err
	}
	if depth == 0 {
		return nil, fmt.Errorf("%w: analysis needs depth >= 1", ErrInvalidArgument)
	}
	if root.IsTerminal() {
		return nil, fmt.Errorf("%w: position is already terminal", ErrIllegalState)
	}

	s := &searcher{evaluator: e.evaluator}
	start := time.Now()
	s.stats.Nodes++

	legal := root.LegalMoves()
	result := &AnalysisResult{
		Moves:    make([]MoveScore, 0, len(legal)),
		NumMoves: len(legal),
	}

	for _, m := range legal {
		child, err := root.ApplyMove(m)
		if err != nil {
			return nil, err
		}
		r, err := s.minimax(child, depth-1)
		if err != nil {
			return nil, err
		}
		ms := MoveScore{Move: m, Score: r.Score}
		result.Moves = append(result.Moves, ms)
		if progress != nil {
			progress(ms)
		}
	}

	maximizing := root.toMove == Max
	sort.SliceStable(result.Moves, func(i, j int) bool {
		if maximizing {
			return result.Moves[i].Score > result.Moves[j].Score
		}
		return result.Moves[i].Score < result.Moves[j].Score
	})

	if len(result.Moves) > 0 {
		result.BestMove = result.Moves[0].Move
		result.BestScore = result.Moves[0].Score
	}

	s.stats.Elapsed = time.Since(start)
	result.Stats = s.stats
	return result, nil
}

// RankMoves returns the top n analyzed root moves. n <= 0 returns all of them.
func (e *MinimaxEngine) RankMoves(root *Position, depth, n int) ([]MoveScore, error) {
	analysis, err := e.AnalyzeMoves(root, depth, nil)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > len(analysis.Moves) {
		return analysis.Moves, nil
	}
	return analysis.Moves[:n], nil
}
