package engine

import "fmt"

// Stone colours used by board snapshots coming from the game layer.
const (
	ColorMin = 0
	ColorMax = 1
)

// Stone is a piece as reported by the game layer. Color is 1 for Max and 0 for Min.
type Stone struct {
	Color int
}

// Snapshot is a board as supplied by an external game layer.
// A nil entry in Stones is an empty cell.
type Snapshot struct {
	Stones    [][]*Stone
	ToMove    Player
	LastMove  *Move
	WinLength int
}

// FromSnapshot converts a game-layer snapshot into a search Position.
func FromSnapshot(s Snapshot) (*Position, error) {
	if len(s.Stones) == 0 {
		return nil, fmt.Errorf("%w: empty board snapshot", ErrInvalidArgument)
	}

	board := make([][]Cell, len(s.Stones))
	for row, line := range s.Stones {
		board[row] = make([]Cell, len(line))
		for col, stone := range line {
			if stone == nil {
				continue
			}
			switch stone.Color {
			case ColorMax:
				board[row][col] = MaxStone
			case ColorMin:
				board[row][col] = MinStone
			default:
				return nil, fmt.Errorf("%w: stone colour must be 0 or 1, got %d at (%d,%d)",
					ErrInvalidArgument, stone.Color, row, col)
			}
		}
	}

	return NewPosition(board, s.ToMove, s.LastMove, s.WinLength)
}
