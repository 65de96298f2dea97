package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned for configuration errors: empty or degenerate
// probability vectors, out-of-range seeds and missing collaborators.
var ErrInvalidArgument = errors.New("invalid argument")

// SelectFromProbabilities returns the first index whose running sum of probabilities
// reaches draw. If floating-point shortfall keeps every prefix sum below draw, the
// last index is returned.
//
// probabilities should be non-negative and sum to about 1. This is not checked: a
// vector summing to less than 1 silently biases the result towards the last index.
func SelectFromProbabilities(draw float64, probabilities []float64) (int, error) {
	if len(probabilities) == 0 {
		return 0, fmt.Errorf("%w: empty probability vector", ErrInvalidArgument)
	}
	acc := 0.0
	for i, p := range probabilities {
		acc += p
		if acc >= draw {
			return i, nil
		}
	}
	return len(probabilities) - 1, nil
}

// SelectFromCDF returns the first index i with draw <= cdf[i].
// The final element is never compared; a draw above every earlier threshold selects it.
func SelectFromCDF(draw float64, cdf []float64) (int, error) {
	if len(cdf) == 0 {
		return 0, fmt.Errorf("%w: empty cumulative distribution", ErrInvalidArgument)
	}
	last := len(cdf) - 1
	for i := 0; i < last; i++ {
		if draw <= cdf[i] {
			return i, nil
		}
	}
	return last, nil
}

// ChooseFromProbabilities consumes exactly one draw from g and selects from probabilities.
func ChooseFromProbabilities(g *Generator, probabilities []float64) (int, error) {
	if g == nil {
		return 0, fmt.Errorf("%w: nil generator", ErrInvalidArgument)
	}
	return SelectFromProbabilities(g.NextUniform(), probabilities)
}

// ChooseFromCDF consumes exactly one draw from g and selects from cdf.
func ChooseFromCDF(g *Generator, cdf []float64) (int, error) {
	if g == nil {
		return 0, fmt.Errorf("%w: nil generator", ErrInvalidArgument)
	}
	return SelectFromCDF(g.NextUniform(), cdf)
}

// ProbabilitiesToCDF converts a probability vector into its cumulative distribution
// in place. The first element is unchanged.
func ProbabilitiesToCDF(weights []float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: empty probability vector", ErrInvalidArgument)
	}
	for i := 1; i < len(weights); i++ {
		weights[i] += weights[i-1]
	}
	return nil
}

// Normalize scales non-negative weights in place so they sum to 1.
func Normalize(weights []float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: empty weight vector", ErrInvalidArgument)
	}
	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight[%d] must be finite and non-negative, got %f", ErrInvalidArgument, i, w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrInvalidArgument)
	}
	for i := range weights {
		weights[i] /= total
	}
	return nil
}
