package engine

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/crosscat/pkg/errors"
)

// logPflip draws an index with probability proportional to
// exp(logWeights[i]). Entries equal to -Inf are never selected; if every
// entry is -Inf there is nothing to sample and a NumericError is returned.
func logPflip(logWeights []float64, rng *rand.Rand) (int, error) {
	if len(logWeights) == 0 {
		return 0, errors.NewNumericError("engine.logPflip")
	}
	probs := errors.LogNormalize(logWeights)

	r := rng.Float64()
	cum := 0.0
	last := -1
	for i, p := range probs {
		if p == 0 {
			continue
		}
		last = i
		cum += p
		if r <= cum {
			return i, nil
		}
	}
	if last < 0 {
		return 0, errors.NewNumericError("engine.logPflip", logWeights...)
	}
	// Rounding can leave cum fractionally below 1; fall back to the last
	// selectable index.
	return last, nil
}
