package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/crosscat/core/gpm"
	"github.com/YuminosukeSato/crosscat/pkg/errors"
)

func init() {
	gpm.Register(gpm.Family{
		Name:      "normal_uc",
		Collapsed: false,
		New: func(stats gpm.SuffStats, hypers *gpm.Hypers, src gpm.Source) (gpm.ComponentModel, error) {
			return NewNormalUC(stats, hypers, src)
		},
		DefaultHypers: defaultNormalHypers,
		HyperGrids:    normalHyperGrids,
	})
}

// NormalUC is the uncollapsed Normal component model with a Normal-Gamma
// prior. Unlike the collapsed Normal it holds an explicit parameter sample
// (mu, rho) as live state:
//
//	rho ~ Gamma(nu/2, rate=s/2)
//	mu | rho ~ Normal(m, precision=r*rho)
//	x | mu, rho ~ Normal(mu, precision=rho)
//
// PredictiveLogp conditions on the current (mu, rho) and ignores the
// sufficient statistics entirely; the statistics only enter through
// TransitionParams and MarginalLogp.
//
// Naming wart, preserved for parity with the family hierarchy this engine
// models: MarginalLogp returns log-likelihood(data | mu, rho) plus
// log-prior(mu, rho), an unnormalized joint log-density, not a true
// marginal like its collapsed sibling.
type NormalUC struct {
	stats  gpm.SuffStats
	hypers *gpm.Hypers
	mu     float64
	rho    float64
	src    gpm.Source
}

// NewNormalUC builds an uncollapsed Normal component and initializes
// (mu, rho) by an immediate TransitionParams draw from the conditional
// given whatever statistics were supplied (possibly none, in which case
// the draw comes from the prior).
func NewNormalUC(stats gpm.SuffStats, hypers *gpm.Hypers, src gpm.Source) (*NormalUC, error) {
	if err := hypers.Validate(); err != nil {
		return nil, err
	}
	c := &NormalUC{stats: stats, hypers: hypers, src: src}
	if err := c.TransitionParams(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewNormalUCWithParams builds an uncollapsed Normal component holding the
// supplied parameter sample instead of drawing one.
func NewNormalUCWithParams(stats gpm.SuffStats, hypers *gpm.Hypers, mu, rho float64, src gpm.Source) (*NormalUC, error) {
	if err := hypers.Validate(); err != nil {
		return nil, err
	}
	if err := errors.CheckPositive("NormalUC precision rho", rho); err != nil {
		return nil, err
	}
	return &NormalUC{stats: stats, hypers: hypers, mu: mu, rho: rho, src: src}, nil
}

// Incorporate implements gpm.ComponentModel.
func (c *NormalUC) Incorporate(x float64) {
	c.stats.Incorporate(x)
}

// Remove implements gpm.ComponentModel.
func (c *NormalUC) Remove(x float64) error {
	return c.stats.Remove(x)
}

// PredictiveLogp returns Normal.logpdf(x; mu, 1/sqrt(rho)), a pure
// function of the current parameter sample.
func (c *NormalUC) PredictiveLogp(x float64) (float64, error) {
	if err := errors.CheckPositive("NormalUC.PredictiveLogp rho", c.rho); err != nil {
		return 0, err
	}
	return distuv.Normal{Mu: c.mu, Sigma: 1 / math.Sqrt(c.rho)}.LogProb(x), nil
}

// SingletonLogp evaluates the current (mu, rho) regardless of N, and so
// coincides with PredictiveLogp. Holding a live parameter sample is the
// point of the uncollapsed variant; the collapsed sibling behaves
// differently here, which is covered explicitly by tests.
func (c *NormalUC) SingletonLogp(x float64) (float64, error) {
	return c.PredictiveLogp(x)
}

// MarginalLogp returns LogLikelihood(stats | mu, rho) + LogPrior(mu, rho).
// See the type documentation for why this is a joint, not a marginal.
func (c *NormalUC) MarginalLogp() (float64, error) {
	prior, err := c.LogPrior()
	if err != nil {
		return 0, err
	}
	return LogLikelihood(c.stats, c.rho, c.mu) + prior, nil
}

// Simulate draws one datum from Normal(mu, 1/sqrt(rho)).
func (c *NormalUC) Simulate() (float64, error) {
	if err := errors.CheckPositive("NormalUC.Simulate rho", c.rho); err != nil {
		return 0, err
	}
	return distuv.Normal{Mu: c.mu, Sigma: 1 / math.Sqrt(c.rho), Src: c.src}.Rand(), nil
}

// TransitionParams resamples (mu, rho) from the full conditional given the
// current sufficient statistics and hyperparameters. rho is drawn before
// mu: mu's conditional precision rn*rho depends on the fresh rho.
func (c *NormalUC) TransitionParams() error {
	m, r, s, nu := normalHypers(c.hypers)
	rn, nun, mn, sn, err := PosteriorHypers(c.stats, m, r, s, nu)
	if err != nil {
		return err
	}
	c.mu, c.rho = sampleNormalGamma(mn, rn, sn, nun, c.src)
	return nil
}

// Stats implements gpm.ComponentModel.
func (c *NormalUC) Stats() gpm.SuffStats {
	return c.stats
}

// Hypers implements gpm.ComponentModel.
func (c *NormalUC) Hypers() *gpm.Hypers {
	return c.hypers
}

// Name implements gpm.ComponentModel.
func (c *NormalUC) Name() string {
	return "normal_uc"
}

// IsCollapsed implements gpm.ComponentModel.
func (c *NormalUC) IsCollapsed() bool {
	return false
}

// Params returns the current latent parameter sample (mu, rho).
func (c *NormalUC) Params() (mu, rho float64) {
	return c.mu, c.rho
}

// LogPrior returns the Normal-Gamma log-density of the current (mu, rho)
// under the shared hyperparameters:
//
//	GammaLogPdf(rho; shape=nu/2, rate=s/2) + NormalLogPdf(mu; m, 1/sqrt(r*rho))
func (c *NormalUC) LogPrior() (float64, error) {
	m, r, s, nu := normalHypers(c.hypers)
	if err := errors.CheckPositive("NormalUC.LogPrior rho", c.rho); err != nil {
		return 0, err
	}
	logRho := distuv.Gamma{Alpha: nu / 2, Beta: s / 2}.LogProb(c.rho)
	logMu := distuv.Normal{Mu: m, Sigma: 1 / math.Sqrt(r*c.rho)}.LogProb(c.mu)
	return logRho + logMu, nil
}

// LogLikelihood is the closed-form Gaussian log-likelihood of the
// statistics under (mu, rho), written in terms of the sufficient
// statistics (the expansion of sum((x_i - mu)^2)), so no raw data needs
// to be retained:
//
//	-(N/2)*log(2*pi) + (N/2)*log(rho) - (rho/2)*(N*mu^2 - 2*mu*sum_x + sum_x_sq)
func LogLikelihood(stats gpm.SuffStats, rho, mu float64) float64 {
	n := float64(stats.N)
	return -n/2*log2Pi + n/2*math.Log(rho) -
		rho/2*(n*mu*mu-2*mu*stats.SumX+stats.SumXSq)
}
