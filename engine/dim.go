package engine

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/crosscat/core/gpm"
	"github.com/YuminosukeSato/crosscat/pkg/errors"
	"github.com/YuminosukeSato/crosscat/pkg/log"
)

const defaultGridLen = 30

// Dim is one logical column of the mixture: a set of cluster components
// of a single family, all sharing one Hypers object. The Dim owns the
// shared hyperparameters and runs the grid-Gibbs hyperparameter
// transition driver over them.
type Dim struct {
	family  gpm.Family
	hypers  *gpm.Hypers
	grids   gpm.HyperGrids
	gridLen int

	clusters []gpm.ComponentModel

	src    gpm.Source
	rng    *rand.Rand
	logger log.Logger
}

// NewDim builds a column of the named family over the given data. The
// data is only used to derive default hyperparameters and the transition
// grids; it is not incorporated — cluster membership is driven by the
// caller through Incorporate and Unincorporate.
func NewDim(familyName string, data []float64, opts ...DimOption) (*Dim, error) {
	family, err := gpm.Lookup(familyName)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	d := &Dim{
		family:  family,
		gridLen: defaultGridLen,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.gridLen < 1 {
		return nil, errors.Wrapf(errors.ErrEmptyGrid, "grid length %d", d.gridLen)
	}
	if d.hypers == nil {
		d.hypers = family.DefaultHypers(data)
	}
	if err := d.hypers.Validate(); err != nil {
		return nil, err
	}
	d.grids, err = family.HyperGrids(data, d.gridLen)
	if err != nil {
		return nil, err
	}
	if d.rng == nil {
		if d.src != nil {
			d.rng = rand.New(d.src)
		} else {
			d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	if d.logger == nil {
		d.logger = log.GetLoggerWithName("engine")
	}
	return d, nil
}

// Family returns the stable family identifier of this column.
func (d *Dim) Family() string {
	return d.family.Name
}

// Hypers returns the shared hyperparameter reference.
func (d *Dim) Hypers() *gpm.Hypers {
	return d.hypers
}

// NumClusters returns the number of cluster components.
func (d *Dim) NumClusters() int {
	return len(d.clusters)
}

// ClusterStats returns a copy of cluster k's sufficient statistics.
func (d *Dim) ClusterStats(k int) (gpm.SuffStats, error) {
	if k < 0 || k >= len(d.clusters) {
		return gpm.SuffStats{}, errors.NewStateError("Dim.ClusterStats", "cluster index out of range")
	}
	return d.clusters[k].Stats(), nil
}

// CreateCluster appends a fresh empty component and returns its index.
func (d *Dim) CreateCluster() (int, error) {
	comp, err := d.family.New(gpm.SuffStats{}, d.hypers, d.src)
	if err != nil {
		return 0, err
	}
	d.clusters = append(d.clusters, comp)
	return len(d.clusters) - 1, nil
}

// AppendCluster installs an already-built component (typically a
// singleton proposal that won a reassignment) as the last cluster.
func (d *Dim) AppendCluster(comp gpm.ComponentModel) {
	d.clusters = append(d.clusters, comp)
}

// DropCluster removes cluster k. Cluster indices above k shift down by
// one; the caller owns the corresponding assignment bookkeeping.
func (d *Dim) DropCluster(k int) error {
	if k < 0 || k >= len(d.clusters) {
		return errors.NewStateError("Dim.DropCluster", "cluster index out of range")
	}
	d.clusters = append(d.clusters[:k], d.clusters[k+1:]...)
	return nil
}

// SingletonComponent builds a fresh empty component for a "new cluster"
// proposal. Uncollapsed families draw their parameters from the prior
// conditional at construction, so repeated calls propose different
// parameter samples.
func (d *Dim) SingletonComponent() (gpm.ComponentModel, error) {
	return d.family.New(gpm.SuffStats{}, d.hypers, d.src)
}

// SingletonLogp scores x under a fresh singleton proposal. For
// uncollapsed families the score depends on the parameter sample the
// proposal drew, so repeated calls may differ.
func (d *Dim) SingletonLogp(x float64) (float64, error) {
	comp, err := d.SingletonComponent()
	if err != nil {
		return 0, err
	}
	return comp.SingletonLogp(x)
}

// Incorporate adds datum x to cluster k.
func (d *Dim) Incorporate(x float64, k int) error {
	if k < 0 || k >= len(d.clusters) {
		return errors.NewStateError("Dim.Incorporate", "cluster index out of range")
	}
	d.clusters[k].Incorporate(x)
	return nil
}

// Unincorporate removes datum x from cluster k.
func (d *Dim) Unincorporate(x float64, k int) error {
	if k < 0 || k >= len(d.clusters) {
		return errors.NewStateError("Dim.Unincorporate", "cluster index out of range")
	}
	return d.clusters[k].Remove(x)
}

// Logp returns the predictive log-probability of x under cluster k.
func (d *Dim) Logp(x float64, k int) (float64, error) {
	if k < 0 || k >= len(d.clusters) {
		return 0, errors.NewStateError("Dim.Logp", "cluster index out of range")
	}
	return d.clusters[k].PredictiveLogp(x)
}

// MarginalLogp returns the column's contribution to the joint log-score,
// the sum over clusters of each component's MarginalLogp.
func (d *Dim) MarginalLogp() (float64, error) {
	total := 0.0
	for _, comp := range d.clusters {
		lp, err := comp.MarginalLogp()
		if err != nil {
			return 0, err
		}
		total += lp
	}
	return total, nil
}

// TransitionParams resamples the latent parameters of every cluster
// component from its full conditional. Collapsed families make this a
// no-op.
func (d *Dim) TransitionParams() error {
	if d.family.Collapsed {
		return nil
	}
	for k, comp := range d.clusters {
		if err := comp.TransitionParams(); err != nil {
			return errors.Wrapf(err, "cluster %d", k)
		}
	}
	return nil
}

// TransitionHypers resamples each shared hyperparameter in turn by grid
// Gibbs: every grid candidate is scored by the summed MarginalLogp of all
// clusters with the candidate installed, holding every component's
// current sufficient statistics (and latent parameters, for uncollapsed
// families) fixed, and the new value is drawn from the normalized
// log-weights. Candidates violating the positivity constraints score
// -Inf and are thereby rejected, never fatal.
//
// While this method runs, no component sharing the Hypers object may be
// scored from another goroutine.
func (d *Dim) TransitionHypers() error {
	// A cluster whose marginal cannot be evaluated under the current
	// hypers has numerically degenerate statistics; it will reject every
	// trial below, so surface it once here.
	for k, comp := range d.clusters {
		if _, err := comp.MarginalLogp(); err != nil {
			errors.Warn(errors.NewDegenerateClusterWarning(d.family.Name, k, comp.Stats().N))
		}
	}

	for _, name := range d.hypers.Names() {
		grid, ok := d.grids[name]
		if !ok || len(grid) == 0 {
			continue
		}
		current := d.hypers.Get(name)
		logps := make([]float64, len(grid))
		rejected := 0
		for i, v := range grid {
			d.hypers.Set(name, v)
			if err := d.hypers.Validate(); err != nil {
				logps[i] = math.Inf(-1)
				rejected++
				errors.Warn(errors.NewProposalRejectedWarning(name, v, "positivity constraint violated"))
				continue
			}
			logps[i] = d.hyperScore()
		}

		idx, err := logPflip(logps, d.rng)
		if err != nil {
			// Every candidate was rejected; keep the prior value.
			d.hypers.Set(name, current)
			d.logger.Warn("hyperparameter transition kept prior value",
				log.HyperKey, name,
				log.FamilyKey, d.family.Name,
				log.RejectedKey, rejected,
			)
			continue
		}
		d.hypers.Set(name, grid[idx])
		d.logger.Debug("hyperparameter transitioned",
			log.OperationKey, "transition_hypers",
			log.HyperKey, name,
			log.FamilyKey, d.family.Name,
			log.RejectedKey, rejected,
		)
	}
	return nil
}

// hyperScore sums the cluster marginals under the currently installed
// trial value. Numeric failures reject the trial instead of aborting the
// transition.
func (d *Dim) hyperScore() float64 {
	total := 0.0
	for _, comp := range d.clusters {
		lp, err := comp.MarginalLogp()
		if err != nil {
			return math.Inf(-1)
		}
		total += lp
	}
	return total
}
