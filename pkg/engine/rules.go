package engine

import "fmt"

// axes are the four line directions checked for a win: vertical,
// horizontal and both diagonals.
var axes = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// IsTerminal reports whether the game is over: the player who just moved
// completed a line through the last move, or the board is full.
//
// Only lines through the last move are inspected. Every earlier position was
// non-terminal, so any new win must contain the stone just placed.
func (p *Position) IsTerminal() bool {
	if !p.hasLast {
		return false
	}
	if p.lastMoverWon() {
		return true
	}
	return p.isFull()
}

// Utility returns the exact outcome of a terminal position:
// +1 when Max has won, -1 when Min has won, 0 for a draw on a full board.
func (p *Position) Utility() (int, error) {
	if !p.hasLast {
		return 0, fmt.Errorf("%w: utility undefined, no moves played", ErrIllegalState)
	}
	if p.lastMoverWon() {
		if p.toMove.Opponent() == Max {
			return 1, nil
		}
		return -1, nil
	}
	if p.isFull() {
		return 0, nil
	}
	return 0, fmt.Errorf("%w: utility is only defined for terminal positions", ErrIllegalState)
}

// Winner returns the player who completed a line with the last move.
func (p *Position) Winner() (Player, bool) {
	if !p.hasLast || !p.lastMoverWon() {
		return Max, false
	}
	return p.toMove.Opponent(), true
}

// WinningLine returns the stones of the first winning line through the last
// move, ordered from one end to the other. It is nil when there is no win.
func (p *Position) WinningLine() []Move {
	if !p.hasLast {
		return nil
	}
	stone := CellFor(p.toMove.Opponent())
	for _, axis := range axes {
		back := p.countDirection(p.lastMove, stone, -axis[0], -axis[1])
		fwd := p.countDirection(p.lastMove, stone, axis[0], axis[1])
		if 1+back+fwd < p.winLength {
			continue
		}
		line := make([]Move, 0, 1+back+fwd)
		for i := -back; i <= fwd; i++ {
			line = append(line, Move{
				Row: p.lastMove.Row + i*axis[0],
				Col: p.lastMove.Col + i*axis[1],
			})
		}
		return line
	}
	return nil
}

func (p *Position) lastMoverWon() bool {
	stone := CellFor(p.toMove.Opponent())
	for _, axis := range axes {
		count := 1
		count += p.countDirection(p.lastMove, stone, axis[0], axis[1])
		count += p.countDirection(p.lastMove, stone, -axis[0], -axis[1])
		if count >= p.winLength {
			return true
		}
	}
	return false
}

// countDirection counts consecutive stones equal to stone starting one step
// away from origin, stopping at the edge or the first non-matching cell.
func (p *Position) countDirection(origin Move, stone Cell, dr, dc int) int {
	count := 0
	r, c := origin.Row+dr, origin.Col+dc
	for r >= 0 && c >= 0 && r < p.size && c < p.size && p.cells[r*p.size+c] == stone {
		count++
		r += dr
		c += dc
	}
	return count
}

func (p *Position) isFull() bool {
	for _, c := range p.cells {
		if c == Empty {
			return false
		}
	}
	return true
}
