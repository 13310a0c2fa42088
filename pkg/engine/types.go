// Package engine provides the rules engine and minimax search for a
// Gomoku-style connection game.
package engine

import "fmt"

// Player identifies one of the two adversarial roles in the search.
type Player int

const (
	Max Player = iota // Maximizing player, moves first on a fresh board
	Min               // Minimizing player
)

// Opponent returns the other player.
func (p Player) Opponent() Player {
	if p == Max {
		return Min
	}
	return Max
}

func (p Player) String() string {
	if p == Max {
		return "max"
	}
	return "min"
}

// ParsePlayer converts "max"/"min" (or "x"/"o") into a Player.
func ParsePlayer(s string) (Player, error) {
	switch s {
	case "max", "MAX", "Max", "x", "X":
		return Max, nil
	case "min", "MIN", "Min", "o", "O":
		return Min, nil
	}
	return Max, fmt.Errorf("%w: unknown player %q", ErrInvalidArgument, s)
}

// Cell is the content of a single board square.
type Cell int8

const (
	Empty    Cell = iota // No stone
	MaxStone             // Stone owned by Max
	MinStone             // Stone owned by Min
)

// CellFor returns the stone value placed by the given player.
func CellFor(p Player) Cell {
	if p == Max {
		return MaxStone
	}
	return MinStone
}

// Valid reports whether c is one of the three known cell values.
func (c Cell) Valid() bool {
	return c == Empty || c == MaxStone || c == MinStone
}

func (c Cell) String() string {
	switch c {
	case MaxStone:
		return "X"
	case MinStone:
		return "O"
	default:
		return "."
	}
}

// Move is a stone placement at (Row, Col), both 0-based.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NewMove returns the move at (row, col).
func NewMove(row, col int) Move {
	return Move{Row: row, Col: col}
}

// InBounds reports whether the move lies on a size×size board.
func (m Move) InBounds(size int) bool {
	return m.Row >= 0 && m.Col >= 0 && m.Row < size && m.Col < size
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
}

// SearchResult pairs the chosen move with its minimax score.
// HasMove is false at terminal and depth-limited leaves where nothing was chosen.
// Score is signed from Max's perspective.
type SearchResult struct {
	Move    Move
	HasMove bool
	Score   int
}

// MoveScore is a root move together with its minimax value.
type MoveScore struct {
	Move  Move `json:"move"`
	Score int  `json:"score"`
}
