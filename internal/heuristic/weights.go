package heuristic

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// Weights configures the threat evaluator.
//
// Stones[k] is the value of one line window that holds k stones of a single
// player and no opposing stones. Windows longer than the slice are
// extrapolated by multiplying the last entry by Growth per extra stone.
type Weights struct {
	Stones []float64 `json:"stones"`
	Growth float64   `json:"growth"`
}

// DefaultWeights returns powers of ten: 1 for a lone stone, 10 for two, and so on.
func DefaultWeights() Weights {
	return Weights{
		Stones: []float64{0, 1, 10, 100, 1000, 10000},
		Growth: 10,
	}
}

// Validate checks that the weights can be used.
func (w Weights) Validate() error {
	if len(w.Stones) < 2 {
		return fmt.Errorf("weights need at least 2 stone entries, got %d", len(w.Stones))
	}
	for i, v := range w.Stones {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("stone weight %d is not finite", i)
		}
	}
	if w.Growth <= 0 || math.IsNaN(w.Growth) || math.IsInf(w.Growth, 0) {
		return fmt.Errorf("growth must be positive and finite, got %v", w.Growth)
	}
	return nil
}

// vector returns one weight per stone count 0..winLength.
func (w Weights) vector(winLength int) []float64 {
	v := make([]float64, winLength+1)
	n := copy(v, w.Stones)
	for k := n; k <= winLength; k++ {
		v[k] = v[k-1] * w.Growth
	}
	return v
}

// LoadWeights reads weights from a JSON file.
func LoadWeights(path string) (Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return Weights{}, fmt.Errorf("opening weights file: %w", err)
	}
	defer f.Close()

	return LoadWeightsFromReader(f)
}

// LoadWeightsFromReader reads weights from JSON. Fields left out keep their defaults.
func LoadWeightsFromReader(r io.Reader) (Weights, error) {
	w := DefaultWeights()
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return Weights{}, fmt.Errorf("decoding weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}
