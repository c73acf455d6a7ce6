package errors

import (
	"math"
)

// CheckFinite checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckFinite(operation string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericError(operation, values...)
		}
	}
	return nil
}

// CheckPositive checks that a scale or precision parameter is strictly
// positive before it reaches a log-density evaluation.
func CheckPositive(operation string, value float64) error {
	if !(value > 0) {
		return NewNumericError(operation, value)
	}
	return nil
}

// LogSumExp computes log(sum(exp(values))) in a numerically stable way.
func LogSumExp(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(-1)
	}

	// Find maximum value
	maxVal := values[0]
	for _, v := range values[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	// If max is -Inf, all values are -Inf
	if math.IsInf(maxVal, -1) {
		return math.Inf(-1)
	}

	// Compute sum(exp(v - max))
	sum := 0.0
	for _, v := range values {
		sum += math.Exp(v - maxVal)
	}

	return maxVal + math.Log(sum)
}

// LogNormalize converts a slice of unnormalized log-weights into
// probabilities that sum to one. Entries equal to -Inf map to zero.
func LogNormalize(logWeights []float64) []float64 {
	z := LogSumExp(logWeights)
	probs := make([]float64, len(logWeights))
	if math.IsInf(z, -1) {
		return probs
	}
	for i, lw := range logWeights {
		probs[i] = math.Exp(lw - z)
	}
	return probs
}
