// Package engine composes component models into a Dirichlet-process
// mixture and runs the Gibbs-style transition machinery over it: row
// reassignment, latent-parameter transitions, hyperparameter grid Gibbs,
// and the CRP concentration transition.
package engine

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/crosscat/core/gpm"
	"github.com/YuminosukeSato/crosscat/core/parallel"
	"github.com/YuminosukeSato/crosscat/pkg/errors"
	"github.com/YuminosukeSato/crosscat/pkg/log"
)

// State is a single-view Dirichlet-process mixture over the rows of one
// or more columns. Every row is assigned to exactly one cluster; each
// Dim keeps one component per cluster, and the State keeps the
// per-cluster sufficient statistics in lockstep with the assignment
// vector through its incorporate/remove discipline.
type State struct {
	data [][]float64
	dims []*Dim

	assignments []int
	counts      []int

	alpha     float64
	alphaGrid []float64
	gridLen   int

	src    gpm.Source
	rng    *rand.Rand
	seed   uint64
	seeded bool
	logger log.Logger
}

// NewState builds a mixture state over the rows of X. families names the
// component model family of each column and must have one entry per
// column of X. The initial partition is drawn sequentially from the CRP
// prior.
func NewState(X mat.Matrix, families []string, opts ...StateOption) (*State, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if len(families) != cols {
		return nil, errors.NewValueError("NewState",
			"families must name one component model family per column")
	}

	s := &State{
		alpha:   1,
		gridLen: defaultGridLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !(s.alpha > 0) {
		return nil, errors.NewConfigError("alpha", "must be positive", s.alpha)
	}
	if s.src == nil {
		s.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	s.rng = rand.New(s.src)
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("engine")
	}

	s.data = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		s.data[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			s.data[i][j] = X.At(i, j)
		}
	}

	s.dims = make([]*Dim, cols)
	for j := 0; j < cols; j++ {
		col := make([]float64, rows)
		for i := 0; i < rows; i++ {
			col[i] = s.data[i][j]
		}
		// Each column gets its own source so columns can transition in
		// parallel without sharing a generator.
		dimSrc := rand.NewPCG(s.src.Uint64(), s.src.Uint64())
		dim, err := NewDim(families[j], col,
			WithDimSource(dimSrc),
			WithDimGridLen(s.gridLen),
			WithDimLogger(s.logger),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d", j)
		}
		s.dims[j] = dim
	}

	s.alphaGrid = gpm.LogGrid(1/float64(rows), float64(rows), s.gridLen)

	s.assignments = make([]int, rows)
	for i := range s.assignments {
		s.assignments[i] = -1
	}
	if err := s.seatInitial(); err != nil {
		return nil, err
	}

	fields := []any{
		log.RowsKey, rows,
		log.DimsKey, cols,
		log.ClustersKey, len(s.counts),
		log.AlphaKey, s.alpha,
	}
	if s.seeded {
		fields = append(fields, log.SeedKey, s.seed)
	}
	s.logger.Info("state initialized", fields...)
	return s, nil
}

// seatInitial draws the starting partition from the CRP prior, creating
// cluster components on demand.
func (s *State) seatInitial() error {
	for r := range s.data {
		u := s.rng.Float64() * (float64(r) + s.alpha)
		k := len(s.counts)
		cum := 0.0
		for kk, c := range s.counts {
			cum += float64(c)
			if u <= cum {
				k = kk
				break
			}
		}
		if k == len(s.counts) {
			if err := s.createCluster(); err != nil {
				return err
			}
		}
		if err := s.incorporateRow(r, k); err != nil {
			return err
		}
	}
	return nil
}

// Rows returns the number of rows held by the state.
func (s *State) Rows() int {
	return len(s.data)
}

// Dims returns the number of columns held by the state.
func (s *State) Dims() int {
	return len(s.dims)
}

// Dim returns column j.
func (s *State) Dim(j int) *Dim {
	return s.dims[j]
}

// NumClusters returns the current number of occupied clusters.
func (s *State) NumClusters() int {
	return len(s.counts)
}

// Alpha returns the current CRP concentration parameter.
func (s *State) Alpha() float64 {
	return s.alpha
}

// Assignments returns a copy of the row-to-cluster assignment vector.
func (s *State) Assignments() []int {
	out := make([]int, len(s.assignments))
	copy(out, s.assignments)
	return out
}

// ClusterCounts returns a copy of the per-cluster row counts.
func (s *State) ClusterCounts() []int {
	out := make([]int, len(s.counts))
	copy(out, s.counts)
	return out
}

func (s *State) createCluster() error {
	for j, d := range s.dims {
		if _, err := d.CreateCluster(); err != nil {
			return errors.Wrapf(err, "column %d", j)
		}
	}
	s.counts = append(s.counts, 0)
	return nil
}

func (s *State) incorporateRow(r, k int) error {
	for j, d := range s.dims {
		if err := d.Incorporate(s.data[r][j], k); err != nil {
			return err
		}
	}
	s.counts[k]++
	s.assignments[r] = k
	return nil
}

// unincorporateRow removes row r from its cluster and returns the
// cluster it left.
func (s *State) unincorporateRow(r int) (int, error) {
	k := s.assignments[r]
	if k < 0 {
		return 0, errors.NewStateError("State.unincorporateRow", "row is not incorporated")
	}
	for j, d := range s.dims {
		if err := d.Unincorporate(s.data[r][j], k); err != nil {
			return 0, err
		}
	}
	s.counts[k]--
	s.assignments[r] = -1
	return k, nil
}

// dropCluster removes the empty cluster k from every column and shifts
// the assignments above it down by one.
func (s *State) dropCluster(k int) error {
	for _, d := range s.dims {
		if err := d.DropCluster(k); err != nil {
			return err
		}
	}
	s.counts = append(s.counts[:k], s.counts[k+1:]...)
	for i, a := range s.assignments {
		if a > k {
			s.assignments[i] = a - 1
		}
	}
	return nil
}

// TransitionRows Gibbs-reassigns every row in turn: the row is removed
// from its cluster, every existing cluster is scored by its CRP weight
// plus the predictive log-probability across columns, a fresh singleton
// cluster is scored by the concentration weight plus SingletonLogp, and
// the row joins the drawn winner. Clusters left empty are deleted.
//
// A component error while scoring a candidate rejects that single
// candidate (score -Inf) and the reassignment continues with the rest;
// it never aborts the sweep.
func (s *State) TransitionRows() error {
	for r := range s.data {
		if err := s.transitionRow(r); err != nil {
			return errors.Wrapf(err, "row %d", r)
		}
	}
	return nil
}

func (s *State) transitionRow(r int) error {
	prev, err := s.unincorporateRow(r)
	if err != nil {
		return err
	}
	if s.counts[prev] == 0 {
		if err := s.dropCluster(prev); err != nil {
			return err
		}
	}

	k := len(s.counts)
	logps := make([]float64, k+1)
	for kk := 0; kk < k; kk++ {
		lp := math.Log(float64(s.counts[kk]))
		for j, d := range s.dims {
			lpj, err := d.Logp(s.data[r][j], kk)
			if err != nil {
				lp = math.Inf(-1)
				break
			}
			lp += lpj
		}
		logps[kk] = lp
	}

	// Fresh singleton proposal. Uncollapsed families draw their proposal
	// parameters from the prior at construction, so the candidate carries
	// a concrete parameter sample.
	proposal := make([]gpm.ComponentModel, len(s.dims))
	singleton := math.Log(s.alpha)
	for j, d := range s.dims {
		comp, err := d.SingletonComponent()
		if err != nil {
			return err
		}
		proposal[j] = comp
		if !math.IsInf(singleton, -1) {
			lpj, err := comp.SingletonLogp(s.data[r][j])
			if err != nil {
				singleton = math.Inf(-1)
				continue
			}
			singleton += lpj
		}
	}
	logps[k] = singleton

	idx, err := logPflip(logps, s.rng)
	if err != nil {
		// Every candidate was rejected; seat the row in the fresh
		// singleton so no row is ever lost from the partition.
		idx = k
	}
	if idx == k {
		for j, d := range s.dims {
			d.AppendCluster(proposal[j])
		}
		s.counts = append(s.counts, 0)
	}
	return s.incorporateRow(r, idx)
}

// TransitionParams resamples the latent parameters of every uncollapsed
// component, column by column.
func (s *State) TransitionParams() error {
	for j, d := range s.dims {
		if err := d.TransitionParams(); err != nil {
			return errors.Wrapf(err, "column %d", j)
		}
	}
	return nil
}

// TransitionParamsParallel fans TransitionParams out across columns.
// Columns share no Hypers object and hold independent sources, so they
// may be transitioned fully in parallel; components within one column
// still transition sequentially.
func (s *State) TransitionParamsParallel() error {
	errs := make([]error, len(s.dims))
	parallel.ParallelizeWithThreshold(len(s.dims), 1, func(start, end int) {
		for i := start; i < end; i++ {
			errs[i] = s.dims[i].TransitionParams()
		}
	})
	for j, err := range errs {
		if err != nil {
			return errors.Wrapf(err, "column %d", j)
		}
	}
	return nil
}

// TransitionHypers runs the grid-Gibbs hyperparameter driver on every
// column in turn.
func (s *State) TransitionHypers() error {
	for j, d := range s.dims {
		if err := d.TransitionHypers(); err != nil {
			return errors.Wrapf(err, "column %d", j)
		}
	}
	return nil
}

// TransitionAlpha resamples the CRP concentration by grid Gibbs over a
// log-spaced grid, scoring each candidate by the CRP log-probability of
// the current partition.
func (s *State) TransitionAlpha() error {
	logps := make([]float64, len(s.alphaGrid))
	for i, v := range s.alphaGrid {
		logps[i] = crpLogp(v, s.counts, len(s.data))
	}
	idx, err := logPflip(logps, s.rng)
	if err != nil {
		return err
	}
	s.alpha = s.alphaGrid[idx]
	return nil
}

// crpLogp is the log-probability of the partition described by counts
// under a CRP with the given concentration.
func crpLogp(alpha float64, counts []int, n int) float64 {
	if !(alpha > 0) {
		return math.Inf(-1)
	}
	lp := float64(len(counts)) * math.Log(alpha)
	for _, c := range counts {
		lg, _ := math.Lgamma(float64(c))
		lp += lg
	}
	lgA, _ := math.Lgamma(alpha)
	lgAN, _ := math.Lgamma(alpha + float64(n))
	return lp + lgA - lgAN
}

// Logp returns the joint log-score of the state: the CRP partition
// log-probability plus every column's marginal contribution.
func (s *State) Logp() (float64, error) {
	total := crpLogp(s.alpha, s.counts, len(s.data))
	for j, d := range s.dims {
		lp, err := d.MarginalLogp()
		if err != nil {
			return 0, errors.Wrapf(err, "column %d", j)
		}
		total += lp
	}
	return total, nil
}

// Transition runs the given number of full Gibbs sweeps: rows, latent
// parameters, hyperparameters, then the concentration. Panics inside a
// sweep surface as an error rather than crashing the inference run.
func (s *State) Transition(sweeps int) (err error) {
	defer errors.Recover(&err, "State.Transition")

	for sweep := 1; sweep <= sweeps; sweep++ {
		start := time.Now()
		if err := s.TransitionRows(); err != nil {
			return err
		}
		if err := s.TransitionParams(); err != nil {
			return err
		}
		if err := s.TransitionHypers(); err != nil {
			return err
		}
		if err := s.TransitionAlpha(); err != nil {
			return err
		}

		if s.logger.Enabled(context.Background(), log.LevelDebug) {
			lp, lpErr := s.Logp()
			if lpErr != nil {
				s.logger.Warn("joint score unavailable", log.ErrAttrKey, lpErr)
				continue
			}
			s.logger.Debug("transition sweep completed",
				log.OperationKey, "transition",
				log.SweepKey, sweep,
				log.ClustersKey, len(s.counts),
				log.AlphaKey, s.alpha,
				log.LogpKey, lp,
				log.DurationMsKey, time.Since(start).Milliseconds(),
			)
		}
	}
	return nil
}

// SimulateRow draws one synthetic row from the posterior predictive:
// a cluster is drawn from the CRP predictive (including a fresh one),
// then every column simulates from that cluster's component.
func (s *State) SimulateRow() ([]float64, error) {
	logps := make([]float64, len(s.counts)+1)
	for k, c := range s.counts {
		logps[k] = math.Log(float64(c))
	}
	logps[len(s.counts)] = math.Log(s.alpha)

	idx, err := logPflip(logps, s.rng)
	if err != nil {
		return nil, err
	}

	row := make([]float64, len(s.dims))
	for j, d := range s.dims {
		comp, err := d.clusterOrSingleton(idx)
		if err != nil {
			return nil, err
		}
		x, err := comp.Simulate()
		if err != nil {
			return nil, err
		}
		row[j] = x
	}
	return row, nil
}

// clusterOrSingleton returns cluster k, or a fresh singleton component
// when k is one past the last cluster.
func (d *Dim) clusterOrSingleton(k int) (gpm.ComponentModel, error) {
	if k < len(d.clusters) {
		return d.clusters[k], nil
	}
	return d.SingletonComponent()
}
