package blur

import (
	"errors"
	"fmt"
	"math"
)

const weightTolerance = 1e-9

// ErrInvalidThreshold is matched by every InvalidThresholdError.
var ErrInvalidThreshold = errors.New("threshold must be a finite, non-negative number")

// InvalidThresholdError carries the rejected threshold value.
type InvalidThresholdError struct {
	Threshold float64
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("%v (got %v)", ErrInvalidThreshold, e.Threshold)
}

func (e *InvalidThresholdError) Is(target error) bool { return target == ErrInvalidThreshold }

// Weights assigns each method its share of the overall score.
type Weights map[Method]float64

// DefaultWeights favours the Laplacian and Sobel estimators.
func DefaultWeights() Weights {
	return Weights{
		MethodLaplacian:   0.30,
		MethodSobel:       0.25,
		MethodFFT:         0.20,
		MethodGradient:    0.15,
		MethodEdgeDensity: 0.10,
	}
}

// Validate checks that every method has a non-negative weight and that the weights sum to 1.
func (w Weights) Validate() error {
	var sum float64
	for _, m := range Methods {
		v, ok := w[m]
		if !ok {
			return fmt.Errorf("missing weight for method %q", m)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("invalid weight %v for method %q", v, m)
		}
		sum += v
	}
	if len(w) != len(Methods) {
		return fmt.Errorf("expected %d weights, got %d", len(Methods), len(w))
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}
	return nil
}

// AggregateResult combines estimator scores. Threshold and IsBlurry are only
// set by Classify.
type AggregateResult struct {
	Overall   float64            `json:"overall"`
	PerMethod map[Method]float64 `json:"per_method"`
	Threshold float64            `json:"threshold,omitempty"`
	IsBlurry  bool               `json:"is_blurry,omitempty"`
}

// Aggregate computes the weighted overall score. Methods without a weight contribute nothing.
func Aggregate(results []EstimatorResult, w Weights) AggregateResult {
	per := make(map[Method]float64, len(results))
	var overall float64
	for _, r := range results {
		per[r.Method] = r.Score
		overall += w[r.Method] * r.Score
	}
	return AggregateResult{Overall: overall, PerMethod: per}
}

// Classify aggregates and labels the image blurry when the overall score is
// strictly below threshold.
func Classify(results []EstimatorResult, w Weights, threshold float64) (AggregateResult, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return AggregateResult{}, err
	}
	agg := Aggregate(results, w)
	agg.Threshold = threshold
	agg.IsBlurry = agg.Overall < threshold
	return agg, nil
}

// ValidateThreshold rejects NaN, infinities and negative values.
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
		return &InvalidThresholdError{Threshold: threshold}
	}
	return nil
}
