package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weightedEval is a deterministic, position-dependent heuristic for tests.
func weightedEval(p *Position) int {
	score := 0
	for r := 0; r < p.Size(); r++ {
		for c := 0; c < p.Size(); c++ {
			switch p.At(r, c) {
			case MaxStone:
				score += (r*7 + c*3) % 11
			case MinStone:
				score -= (r*5 + c*2) % 13
			}
		}
	}
	return score
}

// oracle is an independent exhaustive minimax used to check the engine.
func oracle(t *testing.T, p *Position, depth int, ev Evaluator) int {
	t.Helper()
	if p.IsTerminal() {
		u, err := p.Utility()
		require.NoError(t, err)
		return u
	}
	if depth == 0 {
		return ev.Evaluate(p)
	}
	moves := p.LegalMoves()
	if len(moves) == 0 {
		return 0
	}
	values := make([]int, 0, len(moves))
	for _, m := range moves {
		child, err := p.ApplyMove(m)
		require.NoError(t, err)
		values = append(values, oracle(t, child, depth-1, ev))
	}
	best := values[0]
	for _, v := range values[1:] {
		if (p.ToMove() == Max && v > best) || (p.ToMove() == Min && v < best) {
			best = v
		}
	}
	return best
}

func mustEngine(t *testing.T, ev Evaluator) *MinimaxEngine {
	t.Helper()
	e, err := NewMinimaxEngine(ev)
	require.NoError(t, err)
	return e
}

func TestNewMinimaxEngineNilEvaluator(t *testing.T) {
	e, err := NewMinimaxEngine(nil)
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFindBestMoveInvalidArguments(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(weightedEval))

	_, err := e.FindBestMove(nil, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	p, err := EmptyPosition(9, 5, Max)
	require.NoError(t, err)
	_, err = e.FindBestMove(p, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFindBestMoveDepthZero(t *testing.T) {
	calls := 0
	e := mustEngine(t, EvaluatorFunc(func(p *Position) int {
		calls++
		return 42
	}))

	p := mustPosition(t, Min, mv(2, 2), 5,
		".....",
		".....",
		"..X..",
		".....",
		".....",
	)
	result, err := e.FindBestMove(p, 0)
	require.NoError(t, err)

	assert.False(t, result.HasMove)
	assert.Equal(t, 42, result.Score)
	assert.Equal(t, 1, calls)
}

func TestFindBestMoveTerminalRoot(t *testing.T) {
	calls := 0
	e := mustEngine(t, EvaluatorFunc(func(p *Position) int {
		calls++
		return 1000
	}))

	p := mustPosition(t, Max, mv(0, 2), 3,
		"OOO..",
		"XX...",
		".....",
		".....",
		".....",
	)
	result, stats, err := e.FindBestMoveStats(p, 3)
	require.NoError(t, err)

	assert.False(t, result.HasMove)
	assert.Equal(t, -1, result.Score)
	assert.Zero(t, calls)
	assert.Equal(t, int64(1), stats.Terminals)
	assert.Equal(t, int64(1), stats.Nodes)
}

func TestFindBestMoveNoLegalMoves(t *testing.T) {
	// Centre occupied but nothing recorded as played: no candidates
	e := mustEngine(t, EvaluatorFunc(weightedEval))
	p := mustPosition(t, Min, nil, 3,
		"...",
		".X.",
		"...",
	)
	result, err := e.FindBestMove(p, 2)
	require.NoError(t, err)
	assert.False(t, result.HasMove)
	assert.Equal(t, 0, result.Score)
}

func TestFindBestMoveOpening(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(func(p *Position) int { return 0 }))
	p, err := EmptyPosition(15, 5, Max)
	require.NoError(t, err)

	result, stats, err := e.FindBestMoveStats(p, 1)
	require.NoError(t, err)
	assert.True(t, result.HasMove)
	assert.Equal(t, NewMove(7, 7), result.Move)
	assert.Equal(t, int64(2), stats.Nodes)
	assert.Equal(t, int64(1), stats.Evaluations)
}

func TestFindBestMoveMatchesOracle(t *testing.T) {
	ev := EvaluatorFunc(weightedEval)
	e := mustEngine(t, ev)

	positions := map[string]*Position{
		"max to move": mustPosition(t, Max, mv(2, 3), 4,
			".....",
			".....",
			"..XO.",
			".....",
			".....",
		),
		"min to move": mustPosition(t, Min, mv(1, 1), 3,
			".....",
			".X...",
			"..O..",
			"..X..",
			".....",
		),
		"near win": mustPosition(t, Max, mv(3, 1), 4,
			".....",
			".XXX.",
			".....",
			".OOO.",
			".....",
		),
	}

	for name, p := range positions {
		for depth := 0; depth <= 3; depth++ {
			result, err := e.FindBestMove(p, depth)
			require.NoError(t, err, "%s depth %d", name, depth)

			assert.Equal(t, oracle(t, p, depth, ev), result.Score, "%s depth %d", name, depth)
			if depth == 0 {
				assert.False(t, result.HasMove)
				continue
			}
			require.True(t, result.HasMove, "%s depth %d", name, depth)
			assert.Contains(t, p.LegalMoves(), result.Move, "%s depth %d", name, depth)

			// The chosen move must actually achieve the reported score
			child, err := p.ApplyMove(result.Move)
			require.NoError(t, err)
			assert.Equal(t, oracle(t, child, depth-1, ev), result.Score, "%s depth %d", name, depth)
		}
	}
}

func TestFindBestMoveTieBreakFirstSeen(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(func(p *Position) int { return 0 }))

	minToMove := mustPosition(t, Min, mv(2, 2), 5,
		".....",
		".....",
		"..X..",
		".....",
		".....",
	)
	result, err := e.FindBestMove(minToMove, 1)
	require.NoError(t, err)
	assert.Equal(t, NewMove(1, 1), result.Move)

	maxToMove := mustPosition(t, Max, mv(2, 2), 5,
		".....",
		".....",
		"..O..",
		".....",
		".....",
	)
	result, err = e.FindBestMove(maxToMove, 1)
	require.NoError(t, err)
	assert.Equal(t, NewMove(1, 1), result.Move)
}

func TestFindBestMoveMinimizes(t *testing.T) {
	// Score is the column of the newest Min stone, so Min prefers column 1
	e := mustEngine(t, EvaluatorFunc(func(p *Position) int {
		last, _ := p.LastMove()
		return last.Col
	}))
	p := mustPosition(t, Min, mv(2, 2), 5,
		".....",
		".....",
		"..X..",
		".....",
		".....",
	)
	result, err := e.FindBestMove(p, 1)
	require.NoError(t, err)
	assert.Equal(t, NewMove(1, 1), result.Move)
	assert.Equal(t, 1, result.Score)
}

func fourInRow(t *testing.T) *Position {
	t.Helper()
	stones := emptyStones(15)
	for col := 7; col <= 10; col++ {
		stones[7][col] = &Stone{Color: ColorMax}
	}
	p, err := FromSnapshot(Snapshot{Stones: stones, ToMove: Max, LastMove: mv(7, 10), WinLength: 5})
	require.NoError(t, err)
	return p
}

func TestFindBestMoveCompletesLine(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(func(p *Position) int { return 0 }))

	result, err := e.FindBestMove(fourInRow(t), 1)
	require.NoError(t, err)

	// (7,6) is the first generated move that completes five
	assert.Equal(t, NewMove(7, 6), result.Move)
	assert.Equal(t, 1, result.Score)
}

// openFourEval returns 100 when Max has an open-ended horizontal four.
func openFourEval(p *Position) int {
	n := p.Size()
	for r := 0; r < n; r++ {
		for c := 1; c+4 < n; c++ {
			if p.At(r, c-1) != Empty || p.At(r, c+4) != Empty {
				continue
			}
			if p.At(r, c) == MaxStone && p.At(r, c+1) == MaxStone &&
				p.At(r, c+2) == MaxStone && p.At(r, c+3) == MaxStone {
				return 100
			}
		}
	}
	return 0
}

func TestFindBestMoveHighestEvaluated(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(openFourEval))
	root := fourInRow(t)

	result, err := e.FindBestMove(root, 1)
	require.NoError(t, err)
	require.True(t, result.HasMove)

	// The result is the first legal move reaching the highest child score
	var best *MoveScore
	for _, m := range root.LegalMoves() {
		child, err := root.ApplyMove(m)
		require.NoError(t, err)
		score := oracle(t, child, 0, EvaluatorFunc(openFourEval))
		if best == nil || score > best.Score {
			best = &MoveScore{Move: m, Score: score}
		}
	}
	assert.Equal(t, best.Move, result.Move)
	assert.Equal(t, best.Score, result.Score)
	assert.Equal(t, 100, result.Score)
}

func TestFindBestMoveBlocksWin(t *testing.T) {
	// With three in a row needed, (2,2) is Max's only winning reply
	e := mustEngine(t, EvaluatorFunc(func(p *Position) int { return 0 }))
	p := mustPosition(t, Min, mv(2, 1), 3,
		".....",
		".....",
		"XX...",
		"O....",
		".....",
	)
	result, err := e.FindBestMove(p, 2)
	require.NoError(t, err)
	require.True(t, result.HasMove)

	assert.Equal(t, NewMove(2, 2), result.Move)
	assert.Equal(t, 0, result.Score)
}

func TestFindBestMoveDoesNotMutateRoot(t *testing.T) {
	e := mustEngine(t, EvaluatorFunc(weightedEval))
	p := mustPosition(t, Max, mv(2, 3), 4,
		".....",
		".....",
		"..XO.",
		".....",
		".....",
	)
	before := p.Board()
	_, err := e.FindBestMove(p, 3)
	require.NoError(t, err)
	assert.Equal(t, before, p.Board())
	assert.Equal(t, Max, p.ToMove())
}
