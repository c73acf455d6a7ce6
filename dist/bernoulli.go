package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/crosscat/core/gpm"
	"github.com/YuminosukeSato/crosscat/pkg/errors"
)

func init() {
	gpm.Register(gpm.Family{
		Name:      "bernoulli",
		Collapsed: true,
		New: func(stats gpm.SuffStats, hypers *gpm.Hypers, src gpm.Source) (gpm.ComponentModel, error) {
			return NewBernoulli(stats, hypers, src)
		},
		DefaultHypers: defaultBernoulliHypers,
		HyperGrids:    bernoulliHyperGrids,
	})
}

// Bernoulli is the collapsed Beta-Bernoulli component model:
//
//	p ~ Beta(alpha, beta)
//	x | p ~ Bernoulli(p)
//
// Data must be 0 or 1; the count of ones is carried in SuffStats.SumX.
// Candidate data outside {0, 1} score -Inf. The family exists to keep the
// gpm contract honest: nothing in the engine may assume components are
// Normal-shaped.
type Bernoulli struct {
	stats  gpm.SuffStats
	hypers *gpm.Hypers
	src    gpm.Source
}

// NewBernoulli builds a collapsed Beta-Bernoulli component.
func NewBernoulli(stats gpm.SuffStats, hypers *gpm.Hypers, src gpm.Source) (*Bernoulli, error) {
	if err := hypers.Validate(); err != nil {
		return nil, err
	}
	return &Bernoulli{stats: stats, hypers: hypers, src: src}, nil
}

// Incorporate implements gpm.ComponentModel. The caller is responsible
// for only incorporating values in {0, 1}.
func (c *Bernoulli) Incorporate(x float64) {
	c.stats.Incorporate(x)
}

// Remove implements gpm.ComponentModel.
func (c *Bernoulli) Remove(x float64) error {
	return c.stats.Remove(x)
}

// PredictiveLogp returns the posterior-predictive log-probability of x.
func (c *Bernoulli) PredictiveLogp(x float64) (float64, error) {
	return bernoulliPredictive(c.stats, c.hypers, x), nil
}

// SingletonLogp returns the bare-prior predictive, as if the component
// held zero data.
func (c *Bernoulli) SingletonLogp(x float64) (float64, error) {
	var empty gpm.SuffStats
	return bernoulliPredictive(empty, c.hypers, x), nil
}

// MarginalLogp returns the closed-form log p(data) with p integrated out:
//
//	betaln(alpha+k, beta+N-k) - betaln(alpha, beta)
func (c *Bernoulli) MarginalLogp() (float64, error) {
	alpha, beta := c.hypers.Get("alpha"), c.hypers.Get("beta")
	n := float64(c.stats.N)
	k := c.stats.SumX
	return lbeta(alpha+k, beta+n-k) - lbeta(alpha, beta), nil
}

// Simulate draws one datum from the posterior predictive.
func (c *Bernoulli) Simulate() (float64, error) {
	alpha, beta := c.hypers.Get("alpha"), c.hypers.Get("beta")
	n := float64(c.stats.N)
	p := (c.stats.SumX + alpha) / (n + alpha + beta)
	return distuv.Bernoulli{P: p, Src: c.src}.Rand(), nil
}

// TransitionParams is a no-op: a collapsed component has no latent state.
func (c *Bernoulli) TransitionParams() error {
	return nil
}

// Stats implements gpm.ComponentModel.
func (c *Bernoulli) Stats() gpm.SuffStats {
	return c.stats
}

// Hypers implements gpm.ComponentModel.
func (c *Bernoulli) Hypers() *gpm.Hypers {
	return c.hypers
}

// Name implements gpm.ComponentModel.
func (c *Bernoulli) Name() string {
	return "bernoulli"
}

// IsCollapsed implements gpm.ComponentModel.
func (c *Bernoulli) IsCollapsed() bool {
	return true
}

func bernoulliPredictive(stats gpm.SuffStats, hypers *gpm.Hypers, x float64) float64 {
	alpha, beta := hypers.Get("alpha"), hypers.Get("beta")
	n := float64(stats.N)
	k := stats.SumX
	switch x {
	case 1:
		return math.Log(k+alpha) - math.Log(n+alpha+beta)
	case 0:
		return math.Log(n-k+beta) - math.Log(n+alpha+beta)
	default:
		return math.Inf(-1)
	}
}

// lbeta is the log Beta function.
func lbeta(a, b float64) float64 {
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	return la + lb - lab
}

// NewBernoulliHypers builds the shared hyperparameter set of the
// Beta-Bernoulli family, with positivity constraints on both counts.
func NewBernoulliHypers(alpha, beta float64) *gpm.Hypers {
	return gpm.NewHypers(map[string]float64{"alpha": alpha, "beta": beta}, "alpha", "beta")
}

func defaultBernoulliHypers(data []float64) *gpm.Hypers {
	return NewBernoulliHypers(1, 1)
}

func bernoulliHyperGrids(data []float64, gridLen int) (gpm.HyperGrids, error) {
	if len(data) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	n := math.Max(float64(len(data)), 2)
	return gpm.HyperGrids{
		"alpha": gpm.LogGrid(1/n, n, gridLen),
		"beta":  gpm.LogGrid(1/n, n, gridLen),
	}, nil
}
