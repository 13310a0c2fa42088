package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeMovesAgreesWithFindBestMove(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(weightedEval))
	p := mustPosition(t, Min, mv(1, 1), 3,
		".....",
		".X...",
		"..O..",
		"..X..",
		".....",
	)

	for depth := 1; depth <= 3; depth++ {
		var seen []Move
		analysis, err := e.AnalyzeMoves(p, depth, func(ms MoveScore) {
			seen = append(seen, ms.Move)
		})
		require.NoError(t, err)

		best, err := e.FindBestMove(p, depth)
		require.NoError(t, err)

		assert.Equal(t, p.LegalMoves(), seen, "progress follows generation order")
		assert.Equal(t, len(seen), analysis.NumMoves)
		assert.Equal(t, best.Move, analysis.BestMove, "depth %d", depth)
		assert.Equal(t, best.Score, analysis.BestScore, "depth %d", depth)

		for i := 1; i < len(analysis.Moves); i++ {
			assert.LessOrEqual(t, analysis.Moves[i-1].Score, analysis.Moves[i].Score,
				"Min ranking must be ascending")
		}
	}
}

func TestAnalyzeMovesTiesKeepGenerationOrder(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(func(p *Position) int { return 0 }))
	p := mustPosition(t, Max, mv(2, 2), 5,
		".....",
		".....",
		"..O..",
		".....",
		".....",
	)

	analysis, err := e.AnalyzeMoves(p, 1, nil)
	require.NoError(t, err)

	ranked := make([]Move, len(analysis.Moves))
	for i, ms := range analysis.Moves {
		ranked[i] = ms.Move
	}
	assert.Equal(t, p.LegalMoves(), ranked)
}

func TestAnalyzeMovesErrors(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(weightedEval))

	p, err := EmptyPosition(9, 5, Max)
	require.NoError(t, err)

	_, err = e.AnalyzeMoves(p, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = e.AnalyzeMoves(nil, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	won := mustPosition(t, Max, mv(0, 2), 3,
		"OOO",
		"XX.",
		"...",
	)
	_, err = e.AnalyzeMoves(won, 1, nil)
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestRankMoves(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(weightedEval))
	p := mustPosition(t, Max, mv(2, 3), 4,
		".....",
		".....",
		"..XO.",
		".....",
		".....",
	)

	top, err := e.RankMoves(p, 2, 3)
	require.NoError(t, err)
	assert.Len(t, top, 3)
	assert.GreaterOrEqual(t, top[0].Score, top[1].Score)
	assert.GreaterOrEqual(t, top[1].Score, top[2].Score)

	all, err := e.RankMoves(p, 2, 0)
	require.NoError(t, err)
	assert.Len(t, all, len(p.LegalMoves()))
}
