// Package record provides game record import/export for Gomoku games.
// Records are stored in SGF (Smart Game Format) with GM[4].
package record

import (
	"fmt"

	"github.com/yourusername/gomokuengine/pkg/engine"
)

// Record represents a single recorded game.
type Record struct {
	// Game metadata
	Black     string // Name of the first player (Max)
	White     string // Name of the second player (Min)
	Date      string // Game date (YYYY-MM-DD format)
	Event     string // Event name
	Place     string // Location
	Result    string // SGF result, e.g. "B+", "W+", "0"
	Comment   string // General game comment
	Size      int    // Board edge length
	WinLength int    // Stones in a row needed to win
	Moves     []Play // Sequence of stones placed
}

// Play is one stone placement together with the player who made it.
type Play struct {
	Player engine.Player
	Move   engine.Move
}

// NewRecord creates an empty record for a size×size board.
func NewRecord(size, winLength int) *Record {
	return &Record{
		Size:      size,
		WinLength: winLength,
		Moves:     make([]Play, 0),
	}
}

// AddMove appends a placement by player.
func (r *Record) AddMove(player engine.Player, m engine.Move) {
	r.Moves = append(r.Moves, Play{Player: player, Move: m})
}

// Start returns the empty starting position of the record. Max moves first.
func (r *Record) Start() (*engine.Position, error) {
	return engine.EmptyPosition(r.Size, r.WinLength, engine.Max)
}

// Replay applies every recorded move and returns the positions reached,
// starting with the empty board. Moves after the game has ended, moves by
// the wrong player and moves the rules reject stop the replay with an error.
func (r *Record) Replay() ([]*engine.Position, error) {
	p, err := r.Start()
	if err != nil {
		return nil, err
	}

	positions := make([]*engine.Position, 0, len(r.Moves)+1)
	positions = append(positions, p)
	for i, play := range r.Moves {
		if p.IsTerminal() {
			return positions, fmt.Errorf("move %d %v: %w: game is already over", i+1, play.Move, engine.ErrIllegalState)
		}
		if play.Player != p.ToMove() {
			return positions, fmt.Errorf("move %d %v: %w: played by %s but %s is to move",
				i+1, play.Move, engine.ErrIllegalMove, play.Player, p.ToMove())
		}
		next, err := p.ApplyMove(play.Move)
		if err != nil {
			return positions, fmt.Errorf("move %d: %w", i+1, err)
		}
		positions = append(positions, next)
		p = next
	}
	return positions, nil
}

// Final returns the position after the last recorded move.
func (r *Record) Final() (*engine.Position, error) {
	positions, err := r.Replay()
	if err != nil {
		return nil, err
	}
	return positions[len(positions)-1], nil
}

// ResultFor returns the SGF result string for a finished position:
// "B+" when Max won, "W+" when Min won, "0" for a draw, "" while in progress.
func ResultFor(p *engine.Position) string {
	if !p.IsTerminal() {
		return ""
	}
	if winner, ok := p.Winner(); ok {
		if winner == engine.Max {
			return "B+"
		}
		return "W+"
	}
	return "0"
}
