// Package heuristic provides the default position evaluator used by the
// search service and the command-line tools.
//
// The evaluator counts every line window of win-length cells on the board.
// A window that holds stones of only one player is a potential line for that
// player and is scored by how many stones it already contains. The weighted
// counts are combined with gonum's vectorised dot product.
package heuristic

import (
	"math"

	"github.com/yourusername/gomokuengine/pkg/engine"
	"gonum.org/v1/gonum/floats"
)

// directions scanned for windows: down, right, down-right, down-left.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// ThreatEvaluator scores positions from Max's point of view.
// It is stateless after construction and safe for concurrent use.
type ThreatEvaluator struct {
	weights Weights
}

// NewThreatEvaluator creates an evaluator. Invalid weights fall back to DefaultWeights.
func NewThreatEvaluator(w Weights) *ThreatEvaluator {
	if w.Validate() != nil {
		w = DefaultWeights()
	}
	return &ThreatEvaluator{weights: w}
}

// Weights returns the weights in use.
func (e *ThreatEvaluator) Weights() Weights {
	return e.weights
}

// Counts returns, for each player, how many windows hold exactly k of that
// player's stones and none of the opponent's (index k).
func Counts(p *engine.Position) (maxCounts, minCounts []float64) {
	size, win := p.Size(), p.WinLength()
	maxCounts = make([]float64, win+1)
	minCounts = make([]float64, win+1)

	for _, d := range directions {
		for row := 0; row < size; row++ {
			for col := 0; col < size; col++ {
				endRow := row + d[0]*(win-1)
				endCol := col + d[1]*(win-1)
				if endRow < 0 || endRow >= size || endCol < 0 || endCol >= size {
					continue
				}

				nMax, nMin := 0, 0
				for i := 0; i < win; i++ {
					switch p.At(row+d[0]*i, col+d[1]*i) {
					case engine.MaxStone:
						nMax++
					case engine.MinStone:
						nMin++
					}
				}

				switch {
				case nMax > 0 && nMin == 0:
					maxCounts[nMax]++
				case nMin > 0 && nMax == 0:
					minCounts[nMin]++
				}
			}
		}
	}
	return maxCounts, minCounts
}

// Evaluate implements engine.Evaluator.
func (e *ThreatEvaluator) Evaluate(p *engine.Position) int {
	maxCounts, minCounts := Counts(p)
	w := e.weights.vector(p.WinLength())

	score := floats.Dot(maxCounts, w) - floats.Dot(minCounts, w)
	switch {
	case score >= math.MaxInt32:
		return math.MaxInt32
	case score <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Round(score))
}
