package engine

import (
	"fmt"
	"strings"
)

const (
	// DefaultWinLength is the classic five-in-a-row requirement.
	DefaultWinLength = 5
	// MaxBoardSize is the largest board edge a Position accepts.
	MaxBoardSize = 4096
)

// Position is an immutable board snapshot plus turn and history metadata.
// Transitions always return a new Position with its own copy of the board.
type Position struct {
	size      int
	cells     []Cell // Row-major, size*size entries
	toMove    Player // Player who has not yet moved
	lastMove  Move   // Move that produced this position (valid when hasLast)
	hasLast   bool
	winLength int
}

// EmptyPosition returns the initial position on an empty size×size board.
func EmptyPosition(size, winLength int, toMove Player) (*Position, error) {
	if err := validateShape(size, winLength, toMove); err != nil {
		return nil, err
	}
	return &Position{
		size:      size,
		cells:     make([]Cell, size*size),
		toMove:    toMove,
		winLength: winLength,
	}, nil
}

// NewPosition builds a position from a square grid of cells.
// lastMove may be nil for a position where no move has been played.
// The grid is copied; later changes to board are not observed.
func NewPosition(board [][]Cell, toMove Player, lastMove *Move, winLength int) (*Position, error) {
	size := len(board)
	if err := validateShape(size, winLength, toMove); err != nil {
		return nil, err
	}

	cells := make([]Cell, size*size)
	for row, line := range board {
		if len(line) != size {
			return nil, fmt.Errorf("%w: row %d has %d cells, board must be %dx%d",
				ErrInvalidArgument, row, len(line), size, size)
		}
		for col, c := range line {
			if !c.Valid() {
				return nil, fmt.Errorf("%w: unknown cell value %d at (%d,%d)",
					ErrInvalidArgument, c, row, col)
			}
			cells[row*size+col] = c
		}
	}

	p := &Position{
		size:      size,
		cells:     cells,
		toMove:    toMove,
		winLength: winLength,
	}
	if lastMove != nil {
		if !lastMove.InBounds(size) {
			return nil, fmt.Errorf("%w: last move %v outside %dx%d board",
				ErrInvalidArgument, *lastMove, size, size)
		}
		if p.at(*lastMove) == Empty {
			return nil, fmt.Errorf("%w: last move %v points at an empty cell",
				ErrInvalidArgument, *lastMove)
		}
		p.lastMove = *lastMove
		p.hasLast = true
	}
	return p, nil
}

func validateShape(size, winLength int, toMove Player) error {
	if size <= 0 {
		return fmt.Errorf("%w: board size must be positive, got %d", ErrInvalidArgument, size)
	}
	if size > MaxBoardSize {
		return fmt.Errorf("%w: board size %d exceeds %d", ErrInvalidArgument, size, MaxBoardSize)
	}
	if winLength < 1 {
		return fmt.Errorf("%w: win length must be >= 1, got %d", ErrInvalidArgument, winLength)
	}
	if toMove != Max && toMove != Min {
		return fmt.Errorf("%w: unknown player %d", ErrInvalidArgument, toMove)
	}
	return nil
}

// Size returns the board edge length N.
func (p *Position) Size() int { return p.size }

// WinLength returns the number of stones in a row needed to win.
func (p *Position) WinLength() int { return p.winLength }

// ToMove returns the player whose turn it is.
func (p *Position) ToMove() Player { return p.toMove }

// LastMove returns the move that produced this position.
// The boolean is false for a position where nothing has been played.
func (p *Position) LastMove() (Move, bool) {
	return p.lastMove, p.hasLast
}

// At returns the cell at (row, col). Out-of-range coordinates read as Empty.
func (p *Position) At(row, col int) Cell {
	if row < 0 || col < 0 || row >= p.size || col >= p.size {
		return Empty
	}
	return p.cells[row*p.size+col]
}

func (p *Position) at(m Move) Cell {
	return p.cells[m.Row*p.size+m.Col]
}

// Board returns a fresh copy of the grid.
func (p *Position) Board() [][]Cell {
	board := make([][]Cell, p.size)
	for row := range board {
		board[row] = make([]Cell, p.size)
		copy(board[row], p.cells[row*p.size:(row+1)*p.size])
	}
	return board
}

// StoneCount returns the number of occupied cells.
func (p *Position) StoneCount() int {
	n := 0
	for _, c := range p.cells {
		if c != Empty {
			n++
		}
	}
	return n
}

// Equal reports whether two positions hold the same board and metadata.
func (p *Position) Equal(o *Position) bool {
	if p.size != o.size || p.toMove != o.toMove || p.winLength != o.winLength ||
		p.hasLast != o.hasLast || (p.hasLast && p.lastMove != o.lastMove) {
		return false
	}
	for i := range p.cells {
		if p.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// String renders the board as rows of '.', 'X' (Max) and 'O' (Min).
func (p *Position) String() string {
	var sb strings.Builder
	sb.Grow(p.size * (p.size + 1))
	for row := 0; row < p.size; row++ {
		for col := 0; col < p.size; col++ {
			sb.WriteString(p.cells[row*p.size+col].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (p *Position) copyCells() []Cell {
	cells := make([]Cell, len(p.cells))
	copy(cells, p.cells)
	return cells
}
