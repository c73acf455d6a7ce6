package dist

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/crosscat/core/gpm"
	"github.com/YuminosukeSato/crosscat/pkg/errors"
)

const (
	log2   = 0.6931471805599453
	logPi  = 1.1447298858494002
	log2Pi = 1.8378770664093453
)

func init() {
	gpm.Register(gpm.Family{
		Name:      "normal",
		Collapsed: true,
		New: func(stats gpm.SuffStats, hypers *gpm.Hypers, src gpm.Source) (gpm.ComponentModel, error) {
			return NewNormal(stats, hypers, src)
		},
		DefaultHypers: defaultNormalHypers,
		HyperGrids:    normalHyperGrids,
	})
}

// Normal is the collapsed Normal component model with a Normal-Gamma prior:
//
//	rho ~ Gamma(nu/2, rate=s/2)
//	mu | rho ~ Normal(m, precision=r*rho)
//	x | mu, rho ~ Normal(mu, precision=rho)
//
// The latent (mu, rho) are integrated out analytically; only sufficient
// statistics are stored, and MarginalLogp is a true marginal log p(data).
type Normal struct {
	stats  gpm.SuffStats
	hypers *gpm.Hypers
	src    gpm.Source
}

// NewNormal builds a collapsed Normal component over the given statistics
// and shared hyperparameters.
func NewNormal(stats gpm.SuffStats, hypers *gpm.Hypers, src gpm.Source) (*Normal, error) {
	if err := hypers.Validate(); err != nil {
		return nil, err
	}
	return &Normal{stats: stats, hypers: hypers, src: src}, nil
}

// Incorporate implements gpm.ComponentModel.
func (c *Normal) Incorporate(x float64) {
	c.stats.Incorporate(x)
}

// Remove implements gpm.ComponentModel.
func (c *Normal) Remove(x float64) error {
	return c.stats.Remove(x)
}

// PredictiveLogp returns the posterior-predictive log-density of x, the
// difference of the closed-form marginals with and without x incorporated.
func (c *Normal) PredictiveLogp(x float64) (float64, error) {
	without, err := marginalLogp(c.stats, c.hypers)
	if err != nil {
		return 0, err
	}
	with := c.stats
	with.Incorporate(x)
	after, err := marginalLogp(with, c.hypers)
	if err != nil {
		return 0, err
	}
	return after - without, nil
}

// SingletonLogp returns the predictive log-density of x against the bare
// prior, as if the component held zero data.
func (c *Normal) SingletonLogp(x float64) (float64, error) {
	var empty gpm.SuffStats
	empty.Incorporate(x)
	return marginalLogp(empty, c.hypers)
}

// MarginalLogp returns log p(data) with (mu, rho) integrated out.
func (c *Normal) MarginalLogp() (float64, error) {
	return marginalLogp(c.stats, c.hypers)
}

// Simulate draws (mu, rho) from the posterior and then one datum from
// Normal(mu, 1/sqrt(rho)).
func (c *Normal) Simulate() (float64, error) {
	m, r, s, nu := normalHypers(c.hypers)
	rn, nun, mn, sn, err := PosteriorHypers(c.stats, m, r, s, nu)
	if err != nil {
		return 0, err
	}
	mu, rho := sampleNormalGamma(mn, rn, sn, nun, c.src)
	return distuv.Normal{Mu: mu, Sigma: 1 / math.Sqrt(rho), Src: c.src}.Rand(), nil
}

// TransitionParams is a no-op: a collapsed component has no latent state.
func (c *Normal) TransitionParams() error {
	return nil
}

// Stats implements gpm.ComponentModel.
func (c *Normal) Stats() gpm.SuffStats {
	return c.stats
}

// Hypers implements gpm.ComponentModel.
func (c *Normal) Hypers() *gpm.Hypers {
	return c.hypers
}

// Name implements gpm.ComponentModel.
func (c *Normal) Name() string {
	return "normal"
}

// IsCollapsed implements gpm.ComponentModel.
func (c *Normal) IsCollapsed() bool {
	return true
}

// PosteriorHypers applies the standard Normal-Gamma conjugate update:
//
//	rn  = r + N
//	nun = nu + N
//	mn  = (r*m + sum_x) / rn
//	sn  = s + sum_x_sq + r*m*m - rn*mn*mn
//
// A non-positive sn means the update degenerated numerically (sum_x_sq
// underflowed against rn*mn*mn); that is reported as a NumericError
// rather than silently producing an improper posterior.
func PosteriorHypers(stats gpm.SuffStats, m, r, s, nu float64) (rn, nun, mn, sn float64, err error) {
	n := float64(stats.N)
	rn = r + n
	nun = nu + n
	mn = (r*m + stats.SumX) / rn
	sn = s + stats.SumXSq + r*m*m - rn*mn*mn
	if !(sn > 0) {
		err = errors.NewNumericError("dist.PosteriorHypers", sn)
	}
	return rn, nun, mn, sn, err
}

// logZ is the log-normalizer of the Normal-Gamma distribution with
// hyperparameters (r, s, nu).
func logZ(r, s, nu float64) float64 {
	lg, _ := math.Lgamma(nu / 2)
	return (nu+1)/2*log2 + 0.5*logPi - 0.5*math.Log(r) - nu/2*math.Log(s) + lg
}

// marginalLogp is the closed-form collapsed marginal, the ratio of the
// posterior and prior normalizers.
func marginalLogp(stats gpm.SuffStats, hypers *gpm.Hypers) (float64, error) {
	m, r, s, nu := normalHypers(hypers)
	rn, nun, _, sn, err := PosteriorHypers(stats, m, r, s, nu)
	if err != nil {
		return 0, err
	}
	n := float64(stats.N)
	return -n/2*log2Pi + logZ(rn, sn, nun) - logZ(r, s, nu), nil
}

// sampleNormalGamma draws (mu, rho) from the Normal-Gamma distribution
// with the given hyperparameters. rho is drawn first: mu's conditional
// precision depends on the freshly drawn rho.
func sampleNormalGamma(mn, rn, sn, nun float64, src gpm.Source) (mu, rho float64) {
	rho = distuv.Gamma{Alpha: nun / 2, Beta: sn / 2, Src: src}.Rand()
	mu = distuv.Normal{Mu: mn, Sigma: 1 / math.Sqrt(rn*rho), Src: src}.Rand()
	return mu, rho
}

func normalHypers(h *gpm.Hypers) (m, r, s, nu float64) {
	return h.Get("m"), h.Get("r"), h.Get("s"), h.Get("nu")
}

// NewNormalHypers builds the shared hyperparameter set of the Normal
// families, with positivity constraints on r, s and nu.
func NewNormalHypers(m, r, s, nu float64) *gpm.Hypers {
	return gpm.NewHypers(map[string]float64{"m": m, "r": r, "s": s, "nu": nu}, "r", "s", "nu")
}

func defaultNormalHypers(data []float64) *gpm.Hypers {
	if len(data) == 0 {
		return NewNormalHypers(0, 1, 1, 1)
	}
	mean := stat.Mean(data, nil)
	variance := stat.Variance(data, nil)
	if !(variance > 0) {
		variance = 1
	}
	return NewNormalHypers(mean, 1, variance, 1)
}

// normalHyperGrids builds the candidate grids for the grid-Gibbs
// hyperparameter driver from the column's data: m spans the data range,
// the positivity-constrained hypers get log-spaced grids scaled by the
// sample size and squared deviation.
func normalHyperGrids(data []float64, gridLen int) (gpm.HyperGrids, error) {
	if len(data) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	n := float64(len(data))
	variance := stat.Variance(data, nil)
	if !(variance > 0) {
		variance = 1
	}
	ssqdev := variance*n + 1
	lo, hi := floats.Min(data), floats.Max(data)
	return gpm.HyperGrids{
		"m":  gpm.LinGrid(lo, hi+5, gridLen),
		"r":  gpm.LogGrid(1/n, n, gridLen),
		"s":  gpm.LogGrid(ssqdev/100, ssqdev, gridLen),
		"nu": gpm.LogGrid(1, math.Max(n, 2), gridLen),
	}, nil
}
