package engine

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/crosscat/core/gpm"
	"github.com/YuminosukeSato/crosscat/pkg/log"
)

// StateOption is a function that configures a State.
type StateOption func(*State)

// WithAlpha sets the initial CRP concentration parameter.
func WithAlpha(alpha float64) StateOption {
	return func(s *State) {
		s.alpha = alpha
	}
}

// WithSeed makes the state's random source deterministic. The seed is
// recorded on the construction log line so a run can be reproduced.
func WithSeed(seed uint64) StateOption {
	return func(s *State) {
		s.src = rand.NewPCG(seed, seed+1)
		s.seed = seed
		s.seeded = true
	}
}

// WithSource injects a random source directly.
func WithSource(src gpm.Source) StateOption {
	return func(s *State) {
		s.src = src
	}
}

// WithGridLen sets the resolution of the hyperparameter grids.
func WithGridLen(n int) StateOption {
	return func(s *State) {
		s.gridLen = n
	}
}

// WithLogger injects the logger used by transition operations.
func WithLogger(logger log.Logger) StateOption {
	return func(s *State) {
		s.logger = logger
	}
}

// DimOption is a function that configures a Dim.
type DimOption func(*Dim)

// WithDimHypers supplies the shared hyperparameters instead of deriving
// them from the column data.
func WithDimHypers(h *gpm.Hypers) DimOption {
	return func(d *Dim) {
		d.hypers = h
	}
}

// WithDimGridLen sets the resolution of this column's hyperparameter grids.
func WithDimGridLen(n int) DimOption {
	return func(d *Dim) {
		d.gridLen = n
	}
}

// WithDimSource injects a random source directly.
func WithDimSource(src gpm.Source) DimOption {
	return func(d *Dim) {
		d.src = src
	}
}

// WithDimLogger injects the logger used by transition operations.
func WithDimLogger(logger log.Logger) DimOption {
	return func(d *Dim) {
		d.logger = logger
	}
}
