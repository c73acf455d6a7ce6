// Package gpm defines the generalized probabilistic component model (GPM)
// abstraction: the pluggable contract every distribution family must satisfy
// to participate in the mixture inference engine, together with the shared
// sufficient-statistic and hyperparameter types.
package gpm

import (
	"math/rand/v2"
)

// ComponentModel is the polymorphic contract of one mixture component.
//
// A component owns exactly one SuffStats and holds a non-owning reference
// to the Hypers shared across its column. Each instance is permanently one
// concrete family with one collapsedness; dispatch is static per instance
// and never switched at runtime.
//
// Collapsed families integrate their latent parameters out analytically and
// store only sufficient statistics. Uncollapsed families hold an explicit
// parameter sample as live state and resample it in TransitionParams.
type ComponentModel interface {
	// Incorporate updates the sufficient statistics to include x.
	Incorporate(x float64)

	// Remove is the inverse of Incorporate. It returns a StateError when
	// the resulting statistics would be invalid (e.g. N below zero).
	Remove(x float64) error

	// PredictiveLogp returns the log-probability of a candidate datum
	// given the current statistics and parameters: marginalizing latent
	// parameters if collapsed, conditioning on the current sample if
	// uncollapsed. Returns a NumericError when a non-positive scale or
	// precision reaches the density evaluation.
	PredictiveLogp(x float64) (float64, error)

	// SingletonLogp returns the predictive log-probability as if the
	// component currently held zero data, used to score "new cluster"
	// proposals. For collapsed families this is the bare-prior predictive.
	// For uncollapsed families it is evaluated against the current
	// parameter sample regardless of N; see the family documentation.
	SingletonLogp(x float64) (float64, error)

	// MarginalLogp returns the component's contribution to the joint
	// log-score. Collapsed families return the closed-form log p(data)
	// with parameters integrated out. Uncollapsed families return
	// log-likelihood(data | params) + log-prior(params), an unnormalized
	// joint rather than a true marginal. The asymmetry is inherited from
	// the family hierarchy this engine models and is preserved on purpose.
	MarginalLogp() (float64, error)

	// Simulate draws one datum from the posterior predictive (collapsed)
	// or from the current parameter sample (uncollapsed).
	Simulate() (float64, error)

	// TransitionParams resamples the latent parameters from their full
	// conditional given the sufficient statistics and hyperparameters.
	// Collapsed families implement it as a no-op.
	TransitionParams() error

	// Stats returns a copy of the current sufficient statistics.
	Stats() SuffStats

	// Hypers returns the shared hyperparameter reference.
	Hypers() *Hypers

	// Name returns the stable family identifier used for dispatch and
	// serialization, e.g. "normal_uc".
	Name() string

	// IsCollapsed reports the static family property.
	IsCollapsed() bool
}

// Source is the injected random-number capability. A nil Source means the
// implicit global source, mirroring gonum/stat/distuv.
type Source = rand.Source
