// Package log defines standard attribute keys for inference operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in crosscat. Using these standard keys enables better
// log analysis, monitoring, and debugging of Gibbs sampling runs.
//
// The keys follow a hierarchical naming convention (e.g., "gpm.family",
// "gibbs.sweep") to enable structured log analysis and filtering.
package log

// Model and Operation Context
// These attributes identify the component model family and the transition
// operation being performed.
const (
	// FamilyKey identifies the component model family.
	// Examples: "normal", "normal_uc", "bernoulli"
	FamilyKey = "gpm.family"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "engine", "dist", "core/gpm"
	ComponentKey = "crosscat.component"

	// OperationKey specifies the inference operation being performed.
	// Standard values: "transition_rows", "transition_params",
	// "transition_hypers", "transition_alpha", "simulate"
	OperationKey = "gibbs.operation"

	// HyperKey names the hyperparameter currently being transitioned.
	// Examples: "m", "r", "s", "nu", "alpha"
	HyperKey = "hyper.name"
)

// Inference State
// These attributes describe the current state of the Gibbs sampler.
const (
	// SweepKey records the current sweep number of a transition run.
	SweepKey = "gibbs.sweep"

	// RowsKey indicates the number of rows held by the state.
	RowsKey = "data.rows"

	// DimsKey indicates the number of columns (dims) held by the state.
	DimsKey = "data.dims"

	// ClustersKey records the current number of occupied clusters.
	ClustersKey = "state.clusters"

	// AlphaKey records the current CRP concentration parameter.
	AlphaKey = "state.alpha"

	// SeedKey records the seed used to construct the random source,
	// which makes inference runs reproducible from logs.
	SeedKey = "rng.seed"
)

// Scores and Performance
// These attributes capture log-density scores and timing.
const (
	// LogpKey records a joint or marginal log-probability.
	LogpKey = "metrics.logp"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RejectedKey counts hyperparameter grid proposals rejected for
	// violating positivity constraints during one transition.
	RejectedKey = "hyper.rejected"
)
