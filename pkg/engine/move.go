package engine

// center returns the cell every game must open on.
func (p *Position) center() Move {
	return Move{Row: p.size / 2, Col: p.size / 2}
}

// LegalMoves returns the moves the search may play from this position.
//
// Before any move the only candidate is the centre cell. Afterwards a cell is
// a candidate when it is empty and touches at least one stone in its
// 8-neighbourhood; isolated empty cells are never generated. Moves are
// returned in row-major order.
func (p *Position) LegalMoves() []Move {
	if !p.hasLast {
		c := p.center()
		if p.at(c) != Empty {
			return []Move{}
		}
		return []Move{c}
	}

	moves := make([]Move, 0, 32)
	for row := 0; row < p.size; row++ {
		for col := 0; col < p.size; col++ {
			if p.cells[row*p.size+col] != Empty {
				continue
			}
			if p.adjacentToStone(row, col) {
				moves = append(moves, Move{Row: row, Col: col})
			}
		}
	}
	return moves
}

// ApplyMove places a stone for the player to move and returns the new position.
// The receiver is left unchanged.
func (p *Position) ApplyMove(m Move) (*Position, error) {
	if err := p.checkMove(m); err != nil {
		return nil, err
	}

	cells := p.copyCells()
	cells[m.Row*p.size+m.Col] = CellFor(p.toMove)

	return &Position{
		size:      p.size,
		cells:     cells,
		toMove:    p.toMove.Opponent(),
		lastMove:  m,
		hasLast:   true,
		winLength: p.winLength,
	}, nil
}

// IsLegal reports whether ApplyMove would accept m.
func (p *Position) IsLegal(m Move) bool {
	return p.checkMove(m) == nil
}

func (p *Position) checkMove(m Move) error {
	if !m.InBounds(p.size) {
		return illegalMove(m, "out of bounds")
	}
	if p.at(m) != Empty {
		return illegalMove(m, "occupied")
	}
	if !p.hasLast {
		if m != p.center() {
			return illegalMove(m, "first move must be the centre")
		}
		return nil
	}
	if !p.adjacentToStone(m.Row, m.Col) {
		return illegalMove(m, "not adjacent to any stone")
	}
	return nil
}

func (p *Position) adjacentToStone(row, col int) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if r < 0 || c < 0 || r >= p.size || c >= p.size {
				continue
			}
			if p.cells[r*p.size+c] != Empty {
				return true
			}
		}
	}
	return false
}
