package record

import (
	"fmt"

	"github.com/yourusername/gomokuengine/internal/positionid"
	"github.com/yourusername/gomokuengine/pkg/engine"
)

// GameReview contains the move-by-move analysis of a recorded game.
type GameReview struct {
	Depth   int             `json:"depth"`
	Result  string          `json:"result"` // Result reached on the board, "" if unfinished
	Players [2]PlayerReview `json:"players"`
	Moves   []MoveDetail    `json:"moves"`
	Errors  []MoveDetail    `json:"errors"` // Moves rated Doubtful or worse
	Nodes   int64           `json:"nodes"`
}

// PlayerReview summarises one player's moves. Index 0 is Black (Max).
type PlayerReview struct {
	Name        string  `json:"name"`
	Moves       int     `json:"moves"`  // Unforced moves
	Forced      int     `json:"forced"` // Moves with a single legal choice
	TotalLoss   int     `json:"total_loss"`
	LossPerMove float64 `json:"loss_per_move"`
	Blunders    int     `json:"blunders"`
	Errors      int     `json:"errors"`
	Doubtful    int     `json:"doubtful"`
}

// MoveDetail is the review of a single recorded move.
type MoveDetail struct {
	MoveNumber int              `json:"move_number"`
	Player     engine.Player    `json:"player"`
	Position   string           `json:"position"` // Position ID before the move
	Played     engine.Move      `json:"played"`
	Best       engine.Move      `json:"best"`
	Loss       int              `json:"loss"`
	Skill      engine.SkillType `json:"skill"`
	SkillStr   string           `json:"skill_str"`
}

// Review replays r and rates every move with a depth-ply search.
// progress, when non-nil, is called after each move with the move number
// and the total number of moves.
func Review(e *engine.MinimaxEngine, r *Record, depth int, progress func(done, total int)) (*GameReview, error) {
	positions, err := r.Replay()
	if err != nil {
		return nil, fmt.Errorf("replaying record: %w", err)
	}

	review := &GameReview{
		Depth:   depth,
		Result:  ResultFor(positions[len(positions)-1]),
		Players: [2]PlayerReview{{Name: r.Black}, {Name: r.White}},
		Moves:   make([]MoveDetail, 0, len(r.Moves)),
		Errors:  make([]MoveDetail, 0),
	}

	for i, play := range r.Moves {
		before := positions[i]
		mr, err := e.ReviewMove(before, play.Move, depth)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		id, err := positionid.PositionID(before)
		if err != nil {
			return nil, err
		}

		detail := MoveDetail{
			MoveNumber: i + 1,
			Player:     play.Player,
			Position:   id,
			Played:     play.Move,
			Best:       mr.BestMove,
			Loss:       mr.Loss,
			Skill:      mr.Skill,
			SkillStr:   mr.Skill.String(),
		}
		review.Moves = append(review.Moves, detail)
		review.Nodes += mr.Stats.Nodes

		stats := &review.Players[play.Player]
		if mr.IsForced {
			stats.Forced++
		} else {
			stats.Moves++
			stats.TotalLoss += mr.Loss
		}

		switch mr.Skill {
		case engine.SkillVeryBad:
			stats.Blunders++
		case engine.SkillBad:
			stats.Errors++
		case engine.SkillDoubtful:
			stats.Doubtful++
		}
		if mr.Skill != engine.SkillNone {
			review.Errors = append(review.Errors, detail)
		}

		if progress != nil {
			progress(i+1, len(r.Moves))
		}
	}

	for p := range review.Players {
		if review.Players[p].Moves > 0 {
			review.Players[p].LossPerMove = float64(review.Players[p].TotalLoss) / float64(review.Players[p].Moves)
		}
	}
	return review, nil
}
