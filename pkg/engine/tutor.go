package engine

import (
	"fmt"
)

// SkillType rates a played move against the alternatives.
type SkillType int

const (
	SkillVeryBad  SkillType = iota // Blunder
	SkillBad                       // Error
	SkillDoubtful                  // Questionable
	SkillNone                      // Good or best move
)

// String returns the display name of the skill type.
func (s SkillType) String() string {
	return [...]string{"Very Bad", "Bad", "Doubtful", "None"}[s]
}

// Abbr returns the annotation symbol (??, ?, ?!).
func (s SkillType) Abbr() string {
	return [...]string{"??", "?", "?!", ""}[s]
}

// SkillThresholds are the fractions of the root score spread a move may
// lose before it is rated VeryBad, Bad and Doubtful.
var SkillThresholds = [3]float64{
	0.50,
	0.25,
	0.10,
}

// ClassifySkill rates a move that scored loss below the best move when the
// scores of all root moves span spread. Both are from the mover's side and
// non-negative.
func ClassifySkill(loss, spread float64) SkillType {
	if spread <= 0 || loss <= 0 {
		return SkillNone
	}
	ratio := loss / spread
	switch {
	case ratio >= SkillThresholds[0]:
		return SkillVeryBad
	case ratio >= SkillThresholds[1]:
		return SkillBad
	case ratio >= SkillThresholds[2]:
		return SkillDoubtful
	}
	return SkillNone
}

// MoveReview is the analysis of one played move.
type MoveReview struct {
	Move      Move        `json:"move"`
	BestMove  Move        `json:"best_move"`
	Score     int         `json:"score"`
	BestScore int         `json:"best_score"`
	Loss      int         `json:"loss"` // Score lost from the mover's side, never negative
	Rank      int         `json:"rank"` // 1 for the best move
	Skill     SkillType   `json:"skill"`
	IsForced  bool        `json:"forced"`
	TopMoves  []MoveScore `json:"top_moves"`
	Stats     SearchStats `json:"-"`
}

// ReviewMove scores every root move depth plies deep and rates played
// against the best of them.
func (e *MinimaxEngine) ReviewMove(root *Position, played Move, depth int) (*MoveReview, error) {
	if root != nil && !root.IsTerminal() {
		if err := root.checkMove(played); err != nil {
			return nil, err
		}
	}
	analysis, err := e.AnalyzeMoves(root, depth, nil)
	if err != nil {
		return nil, fmt.Errorf("analyzing position: %w", err)
	}

	review := &MoveReview{
		Move:      played,
		BestMove:  analysis.BestMove,
		BestScore: analysis.BestScore,
		IsForced:  analysis.NumMoves == 1,
		Skill:     SkillNone,
		Stats:     analysis.Stats,
	}

	maxTop := min(5, len(analysis.Moves))
	review.TopMoves = analysis.Moves[:maxTop]

	for i, ms := range analysis.Moves {
		if ms.Move == played {
			review.Score = ms.Score
			review.Rank = i + 1
			break
		}
	}

	sign := 1
	if root.ToMove() == Min {
		sign = -1
	}
	worst := analysis.Moves[len(analysis.Moves)-1].Score
	review.Loss = sign * (review.BestScore - review.Score)
	spread := sign * (review.BestScore - worst)
	if !review.IsForced {
		review.Skill = ClassifySkill(float64(review.Loss), float64(spread))
	}
	return review, nil
}
