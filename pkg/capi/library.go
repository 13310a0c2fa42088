package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/yourusername/gomokuengine/internal/heuristic"
	"github.com/yourusername/gomokuengine/internal/positionid"
	"github.com/yourusername/gomokuengine/pkg/engine"
)

const libraryVersion = "0.1.0"

// main is required for -buildmode=c-shared; it is kept outside the cgo file
// so the package also builds with CGO_ENABLED=0.
func main() {}

var errNotInitialized = errors.New("engine not initialized")

var (
	globalEngine *engine.MinimaxEngine
	engineMutex  sync.RWMutex
	lastError    string
	errorMutex   sync.Mutex
)

// setError stores an error message for later retrieval.
func setError(err error) {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func getError() string {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	return lastError
}

// initEngine builds the shared engine. An empty weightsFile uses the defaults.
func initEngine(weightsFile string) error {
	weights := heuristic.DefaultWeights()
	if weightsFile != "" {
		var err error
		weights, err = heuristic.LoadWeights(weightsFile)
		if err != nil {
			return err
		}
	}
	eng, err := engine.NewMinimaxEngine(heuristic.NewThreatEvaluator(weights))
	if err != nil {
		return err
	}

	engineMutex.Lock()
	globalEngine = eng
	engineMutex.Unlock()
	return nil
}

func shutdownEngine() {
	engineMutex.Lock()
	defer engineMutex.Unlock()
	globalEngine = nil
}

func currentEngine() (*engine.MinimaxEngine, error) {
	engineMutex.RLock()
	defer engineMutex.RUnlock()
	if globalEngine == nil {
		return nil, errNotInitialized
	}
	return globalEngine, nil
}

type evaluateResult struct {
	Score int  `json:"score"`
	Exact bool `json:"exact"` // Score is the game result, not an estimate
}

type bestMoveResult struct {
	HasMove bool         `json:"has_move"`
	Move    *engine.Move `json:"move,omitempty"`
	Score   int          `json:"score"`
	Nodes   int64        `json:"nodes"`
}

type legalMovesResult struct {
	Moves []engine.Move `json:"moves"`
	Count int           `json:"count"`
}

// evaluateJSON scores a position given by its position ID.
func evaluateJSON(positionID string) (string, error) {
	eng, err := currentEngine()
	if err != nil {
		return "", err
	}
	p, err := positionid.PositionFromID(positionID)
	if err != nil {
		return "", err
	}

	result := evaluateResult{}
	if p.IsTerminal() {
		result.Exact = true
		if result.Score, err = p.Utility(); err != nil {
			return "", err
		}
	} else {
		result.Score = eng.Evaluator().Evaluate(p)
	}
	return marshal(result)
}

// bestMoveJSON searches depth plies from a position ID.
func bestMoveJSON(positionID string, depth int) (string, error) {
	eng, err := currentEngine()
	if err != nil {
		return "", err
	}
	p, err := positionid.PositionFromID(positionID)
	if err != nil {
		return "", err
	}

	sr, stats, err := eng.FindBestMoveStats(p, depth)
	if err != nil {
		return "", err
	}
	result := bestMoveResult{HasMove: sr.HasMove, Score: sr.Score, Nodes: stats.Nodes}
	if sr.HasMove {
		m := sr.Move
		result.Move = &m
	}
	return marshal(result)
}

// legalMovesJSON lists the legal moves of a position ID. A finished game has none.
func legalMovesJSON(positionID string) (string, error) {
	p, err := positionid.PositionFromID(positionID)
	if err != nil {
		return "", err
	}
	moves := p.LegalMoves()
	if p.IsTerminal() {
		moves = []engine.Move{}
	}
	return marshal(legalMovesResult{Moves: moves, Count: len(moves)})
}

func marshal(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(b), nil
}

// errorJSON is handed to C callers in place of a result.
func errorJSON(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}
