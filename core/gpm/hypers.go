package gpm

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/crosscat/pkg/errors"
)

// Hypers holds the hyperparameters shared by every component of one
// logical column. Components hold a non-owning *Hypers reference; the
// owning Dim controls its lifetime.
//
// Mutation discipline: components never write to a Hypers object. Only
// the hyperparameter transition driver mutates it, and while it does,
// no component sharing the object may be scored concurrently. Components
// that share no Hypers object may be transitioned fully in parallel.
type Hypers struct {
	vals     map[string]float64
	positive map[string]bool
}

// NewHypers creates a shared hyperparameter set from the given values.
// The named keys in positive must remain strictly greater than zero;
// Validate reports a ConfigError for any violation.
func NewHypers(vals map[string]float64, positive ...string) *Hypers {
	h := &Hypers{
		vals:     make(map[string]float64, len(vals)),
		positive: make(map[string]bool, len(positive)),
	}
	for k, v := range vals {
		h.vals[k] = v
	}
	for _, k := range positive {
		h.positive[k] = true
	}
	return h
}

// Get returns the value of the named hyperparameter, or zero if the
// name is unknown. Families only read names they registered themselves.
func (h *Hypers) Get(name string) float64 {
	return h.vals[name]
}

// Set installs a new value for the named hyperparameter. The caller is
// responsible for running Validate afterwards when the value came from
// a transition proposal.
func (h *Hypers) Set(name string, v float64) {
	h.vals[name] = v
}

// Names returns the hyperparameter names in sorted order, so the
// transition driver visits them deterministically.
func (h *Hypers) Names() []string {
	names := make([]string, 0, len(h.vals))
	for k := range h.vals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate returns a ConfigError if any positivity-constrained
// hyperparameter is not strictly positive. A proposal that fails
// Validate must be rejected, keeping the prior value.
func (h *Hypers) Validate() error {
	for _, name := range h.Names() {
		if h.positive[name] && !(h.vals[name] > 0) {
			return errors.NewConfigError(name, "must be positive", h.vals[name])
		}
	}
	return nil
}

// Clone returns a deep copy. Useful for snapshotting a hyperparameter
// set before a sequence of trial mutations.
func (h *Hypers) Clone() *Hypers {
	c := &Hypers{
		vals:     make(map[string]float64, len(h.vals)),
		positive: make(map[string]bool, len(h.positive)),
	}
	for k, v := range h.vals {
		c.vals[k] = v
	}
	for k := range h.positive {
		c.positive[k] = true
	}
	return c
}

// HyperGrids maps each hyperparameter name to the candidate values the
// grid-Gibbs transition driver samples from.
type HyperGrids map[string][]float64

// LinGrid returns n evenly spaced values covering [lo, hi].
func LinGrid(lo, hi float64, n int) []float64 {
	if n < 2 || !(hi > lo) {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// LogGrid returns n logarithmically spaced values covering [lo, hi].
// Both bounds must be positive; grids for positivity-constrained
// hyperparameters are built this way so no candidate can violate the
// constraint.
func LogGrid(lo, hi float64, n int) []float64 {
	if !(lo > 0) {
		lo = 1e-6
	}
	if n < 2 || !(hi > lo) {
		return []float64{lo}
	}
	return floats.LogSpan(make([]float64, n), lo, hi)
}
