// Package inference turns a model output vector into a labeled result.
package inference

import (
	"fmt"
	"image"
	"log/slog"
	"sort"

	"github.com/chewxy/math32"
	"github.com/krau/lesionscan/catalog"
	"github.com/krau/lesionscan/model"
	"github.com/krau/lesionscan/preprocess"
)

// sumTolerance bounds how far a softmax output may drift from 1 before it
// is reported.
const sumTolerance = 1e-3

type Score struct {
	Index       int                 `json:"index"`
	Label       catalog.LesionClass `json:"label"`
	Probability float32             `json:"probability"`
}

type PredictionResult struct {
	Label              catalog.LesionClass
	Index              int
	ProbabilityPercent float64
	// Ranking lists every class by descending probability. Equal
	// probabilities keep catalog order.
	Ranking []Score
}

// Classify runs one image through m. m must come from a successful
// registry load.
func Classify(m model.Model, cat catalog.Catalog, img image.Image) (*PredictionResult, error) {
	tensor, err := preprocess.Transform(img)
	if err != nil {
		return nil, err
	}
	probs, err := m.Forward(tensor)
	if err != nil {
		return nil, fmt.Errorf("forward pass: %w", err)
	}
	return Interpret(probs, cat)
}

// Interpret maps a probability vector onto the catalog.
func Interpret(probs []float32, cat catalog.Catalog) (*PredictionResult, error) {
	if err := cat.CheckWidth(len(probs)); err != nil {
		return nil, err
	}

	idx := Argmax(probs)
	label, err := cat.At(idx)
	if err != nil {
		return nil, err
	}

	checkSum(probs)

	return &PredictionResult{
		Label:              label,
		Index:              idx,
		ProbabilityPercent: Percent(probs[idx]),
		Ranking:            rank(probs, cat),
	}, nil
}

// Argmax returns the index of the largest value. Ties go to the lowest
// index and NaN never wins. It returns -1 for an empty slice.
func Argmax(v []float32) int {
	if len(v) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] || math32.IsNaN(v[best]) && !math32.IsNaN(v[i]) {
			best = i
		}
	}
	return best
}

// Percent converts a probability to a percentage clamped to [0, 100].
// NaN maps to 0.
func Percent(p float32) float64 {
	if math32.IsNaN(p) {
		return 0
	}
	return float64(min(max(p, 0), 1)) * 100
}

func rank(probs []float32, cat catalog.Catalog) []Score {
	classes := cat.Classes()
	out := make([]Score, len(probs))
	for i, p := range probs {
		out[i] = Score{Index: i, Label: classes[i], Probability: p}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

func checkSum(probs []float32) {
	var sum float32
	for _, p := range probs {
		sum += p
	}
	if math32.Abs(sum-1) > sumTolerance {
		slog.Warn("Model output does not sum to 1", slog.Float64("sum", float64(sum)))
	}
}
