package engine

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseBoard builds a grid from rows of '.', 'X' (Max) and 'O' (Min).
func parseBoard(t *testing.T, rows ...string) [][]Cell {
	t.Helper()
	board := make([][]Cell, len(rows))
	for r, line := range rows {
		board[r] = make([]Cell, len(line))
		for c, ch := range line {
			switch ch {
			case 'X':
				board[r][c] = MaxStone
			case 'O':
				board[r][c] = MinStone
			case '.':
			default:
				t.Fatalf("bad board character %q", ch)
			}
		}
	}
	return board
}

func mustPosition(t *testing.T, toMove Player, last *Move, winLength int, rows ...string) *Position {
	t.Helper()
	p, err := NewPosition(parseBoard(t, rows...), toMove, last, winLength)
	require.NoError(t, err)
	return p
}

func mv(row, col int) *Move {
	m := NewMove(row, col)
	return &m
}

func TestPlayerOpponent(t *testing.T) {
	assert.Equal(t, Min, Max.Opponent())
	assert.Equal(t, Max, Min.Opponent())
	assert.Equal(t, Max, Max.Opponent().Opponent())
}

func TestFirstMoveIsCentre(t *testing.T) {
	for _, size := range []int{1, 3, 4, 15, 19} {
		p, err := EmptyPosition(size, DefaultWinLength, Max)
		require.NoError(t, err)

		moves := p.LegalMoves()
		require.Len(t, moves, 1, "size %d", size)
		assert.Equal(t, NewMove(size/2, size/2), moves[0], "size %d", size)
	}
}

func TestFirstMoveCentreOccupied(t *testing.T) {
	p := mustPosition(t, Min, nil, 3,
		"...",
		".X.",
		"...",
	)
	assert.Empty(t, p.LegalMoves())
	assert.NotNil(t, p.LegalMoves())
}

func TestLegalMovesAdjacencyRowMajor(t *testing.T) {
	p := mustPosition(t, Min, mv(2, 2), 5,
		".....",
		".....",
		"..X..",
		".....",
		".....",
	)

	want := []Move{
		{1, 1}, {1, 2}, {1, 3},
		{2, 1}, {2, 3},
		{3, 1}, {3, 2}, {3, 3},
	}
	assert.Equal(t, want, p.LegalMoves())
}

func TestLegalMovesCorner(t *testing.T) {
	p := mustPosition(t, Min, mv(0, 0), 3,
		"X..",
		"...",
		"...",
	)
	assert.Equal(t, []Move{{0, 1}, {1, 0}, {1, 1}}, p.LegalMoves())
}

func TestLegalMovesExcludeIsolatedCells(t *testing.T) {
	p := mustPosition(t, Max, mv(1, 2), 5,
		"......",
		"..XO..",
		"......",
		"......",
		"......",
		"......",
	)
	for _, m := range p.LegalMoves() {
		assert.LessOrEqual(t, m.Row, 2, "move %v is not adjacent", m)
		assert.Equal(t, Empty, p.At(m.Row, m.Col))
	}
	assert.False(t, p.IsLegal(NewMove(4, 4)))
	assert.True(t, p.IsLegal(NewMove(2, 4)))
}

func TestApplyMoveTransitions(t *testing.T) {
	p, err := EmptyPosition(15, 5, Max)
	require.NoError(t, err)

	child, err := p.ApplyMove(NewMove(7, 7))
	require.NoError(t, err)

	assert.Equal(t, MaxStone, child.At(7, 7))
	assert.Equal(t, Min, child.ToMove())
	last, ok := child.LastMove()
	assert.True(t, ok)
	assert.Equal(t, NewMove(7, 7), last)

	// Parent untouched
	assert.Equal(t, Empty, p.At(7, 7))
	assert.Equal(t, Max, p.ToMove())
	_, ok = p.LastMove()
	assert.False(t, ok)

	grandchild, err := child.ApplyMove(NewMove(6, 6))
	require.NoError(t, err)
	assert.Equal(t, MinStone, grandchild.At(6, 6))
	assert.Equal(t, Max, grandchild.ToMove())
	assert.Equal(t, Empty, child.At(6, 6))
}

func TestApplyMoveErrors(t *testing.T) {
	empty, err := EmptyPosition(9, 5, Max)
	require.NoError(t, err)
	played, err := empty.ApplyMove(NewMove(4, 4))
	require.NoError(t, err)

	tests := []struct {
		name   string
		pos    *Position
		move   Move
		reason string
	}{
		{"first move off centre", empty, NewMove(0, 0), "centre"},
		{"negative row", played, NewMove(-1, 4), "out of bounds"},
		{"column past edge", played, NewMove(4, 9), "out of bounds"},
		{"occupied", played, NewMove(4, 4), "occupied"},
		{"not adjacent", played, NewMove(0, 0), "not adjacent"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			child, err := tc.pos.ApplyMove(tc.move)
			assert.Nil(t, child)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIllegalMove))

			var ime *IllegalMoveError
			require.ErrorAs(t, err, &ime)
			assert.Equal(t, tc.move, ime.Move)
			assert.Contains(t, ime.Reason, tc.reason)
		})
	}
}

// Every generated move applies cleanly and changes exactly one cell.
func TestLegalMovesApplyChangesOneCell(t *testing.T) {
	p := mustPosition(t, Max, mv(3, 4), 4,
		"......",
		"..O...",
		"..XX..",
		"...OO.",
		"......",
		"......",
	)

	positions := []*Position{p}
	for _, m := range p.LegalMoves()[:3] {
		child, err := p.ApplyMove(m)
		require.NoError(t, err)
		positions = append(positions, child)
	}

	for _, pos := range positions {
		before := pos.Board()
		for _, m := range pos.LegalMoves() {
			child, err := pos.ApplyMove(m)
			require.NoError(t, err, "move %v", m)

			diff := 0
			after := child.Board()
			for r := range after {
				for c := range after[r] {
					if after[r][c] != before[r][c] {
						diff++
					}
				}
			}
			assert.Equal(t, 1, diff, "move %v", m)
			assert.Equal(t, before, pos.Board(), "parent mutated by %v", m)
		}
	}
}

func TestBoardCopyIsIndependent(t *testing.T) {
	p := mustPosition(t, Min, mv(1, 1), 3,
		"...",
		".X.",
		"...",
	)
	b := p.Board()
	b[0][0] = MinStone
	assert.Equal(t, Empty, p.At(0, 0))
}

func TestIsTerminalInitialPosition(t *testing.T) {
	p, err := EmptyPosition(15, 5, Max)
	require.NoError(t, err)
	assert.False(t, p.IsTerminal())
}

func TestWinDetection(t *testing.T) {
	tests := []struct {
		name    string
		rows    []string
		last    Move
		toMove  Player
		utility int
	}{
		{
			name: "horizontal max",
			rows: []string{
				".......",
				".......",
				".XXXXX.",
				".......",
				".......",
				".......",
				".......",
			},
			last: NewMove(2, 5), toMove: Min, utility: 1,
		},
		{
			name: "vertical min",
			rows: []string{
				"...O...",
				"...O...",
				"...O...",
				"...O...",
				"...O...",
				".......",
				".......",
			},
			last: NewMove(2, 3), toMove: Max, utility: -1,
		},
		{
			name: "diagonal max",
			rows: []string{
				"X......",
				".X.....",
				"..X....",
				"...X...",
				"....X..",
				".......",
				".......",
			},
			last: NewMove(0, 0), toMove: Min, utility: 1,
		},
		{
			name: "anti-diagonal min",
			rows: []string{
				".......",
				".......",
				"......O",
				".....O.",
				"....O..",
				"...O...",
				"..O....",
			},
			last: NewMove(4, 4), toMove: Max, utility: -1,
		},
		{
			name: "overline counts",
			rows: []string{
				"XXXXXXX",
				".......",
				".......",
				".......",
				".......",
				".......",
				".......",
			},
			last: NewMove(0, 6), toMove: Min, utility: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := mustPosition(t, tc.toMove, &tc.last, 5, tc.rows...)
			require.True(t, p.IsTerminal())

			u, err := p.Utility()
			require.NoError(t, err)
			assert.Equal(t, tc.utility, u)

			winner, ok := p.Winner()
			assert.True(t, ok)
			assert.Equal(t, tc.toMove.Opponent(), winner)
			assert.GreaterOrEqual(t, len(p.WinningLine()), 5)
		})
	}
}

func TestNoWinFourInRow(t *testing.T) {
	p := mustPosition(t, Min, mv(2, 4), 5,
		".......",
		".......",
		".XXXX..",
		".......",
		".......",
		".......",
		".......",
	)
	assert.False(t, p.IsTerminal())
	assert.Nil(t, p.WinningLine())
	_, ok := p.Winner()
	assert.False(t, ok)
}

func TestWinOnlyThroughLastMove(t *testing.T) {
	// Min holds five in a row, but the last move was Max elsewhere
	p := mustPosition(t, Min, mv(6, 6), 5,
		"OOOOO..",
		".......",
		".......",
		".......",
		".......",
		".......",
		"......X",
	)
	assert.False(t, p.IsTerminal())
}

func TestWinningLineOrder(t *testing.T) {
	p := mustPosition(t, Min, mv(2, 3), 3,
		".....",
		".....",
		".XXX.",
		".....",
		".....",
	)
	assert.Equal(t, []Move{{2, 1}, {2, 2}, {2, 3}}, p.WinningLine())
}

func TestFullBoardDraw(t *testing.T) {
	p := mustPosition(t, Min, mv(2, 2), 3,
		"XOX",
		"XOO",
		"OXX",
	)
	require.True(t, p.IsTerminal())

	u, err := p.Utility()
	require.NoError(t, err)
	assert.Equal(t, 0, u)
	assert.Empty(t, p.LegalMoves())
}

func TestUtilityErrors(t *testing.T) {
	initial, err := EmptyPosition(15, 5, Max)
	require.NoError(t, err)
	_, err = initial.Utility()
	assert.ErrorIs(t, err, ErrIllegalState)

	open, err := initial.ApplyMove(NewMove(7, 7))
	require.NoError(t, err)
	_, err = open.Utility()
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestNewPositionValidation(t *testing.T) {
	tests := []struct {
		name      string
		board     [][]Cell
		toMove    Player
		last      *Move
		winLength int
	}{
		{"empty board", [][]Cell{}, Max, nil, 5},
		{"ragged", [][]Cell{{Empty, Empty}, {Empty}}, Max, nil, 2},
		{"not square", [][]Cell{{Empty, Empty, Empty}, {Empty, Empty, Empty}}, Max, nil, 2},
		{"unknown cell", [][]Cell{{Empty, Cell(7)}, {Empty, Empty}}, Max, nil, 2},
		{"zero win length", [][]Cell{{Empty}}, Max, nil, 0},
		{"unknown player", [][]Cell{{Empty}}, Player(9), nil, 1},
		{"too large", make([][]Cell, MaxBoardSize+1), Max, nil, 5},
		{"last move off board", [][]Cell{{MaxStone}}, Min, mv(1, 0), 1},
		{"last move on empty cell", [][]Cell{{Empty, Empty}, {Empty, Empty}}, Min, mv(0, 0), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPosition(tc.board, tc.toMove, tc.last, tc.winLength)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestEmptyPositionRejectsHugeBoards(t *testing.T) {
	for _, size := range []int{MaxBoardSize + 1, math.MaxInt32} {
		p, err := EmptyPosition(size, DefaultWinLength, Max)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrInvalidArgument, "size %d", size)
	}

	p, err := EmptyPosition(MaxBoardSize, DefaultWinLength, Max)
	require.NoError(t, err)
	assert.Equal(t, MaxBoardSize, p.Size())
}

func TestNewPositionCopiesInput(t *testing.T) {
	board := parseBoard(t, "...", ".X.", "...")
	p, err := NewPosition(board, Min, mv(1, 1), 3)
	require.NoError(t, err)

	board[0][0] = MinStone
	assert.Equal(t, Empty, p.At(0, 0))
}

func TestPositionString(t *testing.T) {
	p := mustPosition(t, Max, mv(1, 1), 3,
		"...",
		".XO",
		"...",
	)
	assert.Equal(t, "...\n.XO\n...\n", p.String())
	assert.Equal(t, 2, p.StoneCount())
	assert.Equal(t, 3, strings.Count(p.String(), "\n"))
}

func TestPositionEqual(t *testing.T) {
	a := mustPosition(t, Min, mv(1, 1), 3, "...", ".X.", "...")
	b := mustPosition(t, Min, mv(1, 1), 3, "...", ".X.", "...")
	c := mustPosition(t, Max, mv(1, 1), 3, "...", ".X.", "...")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
