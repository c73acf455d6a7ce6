package engine

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/crosscat/core/gpm"
	"github.com/YuminosukeSato/crosscat/dist"
	"github.com/YuminosukeSato/crosscat/pkg/errors"
)

func testColumn() []float64 {
	return []float64{-5.2, -4.8, -5.1, -4.9, -5.3, 4.7, 5.1, 4.9, 5.2, 5.0}
}

func TestNewDimUnknownFamily(t *testing.T) {
	_, err := NewDim("cauchy", testColumn())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownFamily))
}

func TestNewDimEmptyData(t *testing.T) {
	_, err := NewDim("normal", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestNewDimRejectsEmptyGrid(t *testing.T) {
	_, err := NewDim("normal", testColumn(), WithDimGridLen(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyGrid))

	_, err = NewDim("normal", testColumn(), WithDimGridLen(-3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyGrid))
}

func TestDimClusterBookkeeping(t *testing.T) {
	d, err := NewDim("normal", testColumn(), WithDimSource(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Equal(t, 0, d.NumClusters())

	k0, err := d.CreateCluster()
	require.NoError(t, err)
	k1, err := d.CreateCluster()
	require.NoError(t, err)
	assert.Equal(t, 0, k0)
	assert.Equal(t, 1, k1)

	require.NoError(t, d.Incorporate(-5.0, k0))
	require.NoError(t, d.Incorporate(-4.5, k0))
	require.NoError(t, d.Incorporate(5.0, k1))

	stats, err := d.ClusterStats(k0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.N)
	assert.InDelta(t, -9.5, stats.SumX, 1e-12)

	require.NoError(t, d.Unincorporate(-4.5, k0))
	stats, err = d.ClusterStats(k0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.N)
	assert.InDelta(t, -5.0, stats.SumX, 1e-12)

	assert.Error(t, d.Incorporate(0, 5))
	assert.Error(t, d.Unincorporate(0, -1))
}

func TestDimDropClusterShiftsIndices(t *testing.T) {
	d, err := NewDim("normal", testColumn(), WithDimSource(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := d.CreateCluster()
		require.NoError(t, err)
	}
	require.NoError(t, d.Incorporate(7.0, 2))

	require.NoError(t, d.DropCluster(0))
	require.Equal(t, 2, d.NumClusters())

	stats, err := d.ClusterStats(1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.N)
	assert.InDelta(t, 7.0, stats.SumX, 1e-12)

	assert.Error(t, d.DropCluster(2))
}

func TestDimMarginalLogpSumsClusters(t *testing.T) {
	d, err := NewDim("normal", testColumn(), WithDimSource(rand.NewPCG(5, 6)))
	require.NoError(t, err)

	total, err := d.MarginalLogp()
	require.NoError(t, err)
	assert.Zero(t, total, "empty column must contribute nothing to the joint score")

	k0, _ := d.CreateCluster()
	k1, _ := d.CreateCluster()
	require.NoError(t, d.Incorporate(-5.0, k0))
	require.NoError(t, d.Incorporate(-4.8, k0))
	require.NoError(t, d.Incorporate(5.1, k1))

	total, err = d.MarginalLogp()
	require.NoError(t, err)
	require.False(t, math.IsInf(total, 0))
	require.False(t, math.IsNaN(total))

	lp0, err := d.Logp(-5.1, k0)
	require.NoError(t, err)
	lp1, err := d.Logp(-5.1, k1)
	require.NoError(t, err)
	assert.Greater(t, lp0, lp1,
		"the cluster holding the nearby data must predict the datum better")
}

func TestDimTransitionHypersStaysValid(t *testing.T) {
	for _, family := range []string{"normal", "normal_uc"} {
		t.Run(family, func(t *testing.T) {
			d, err := NewDim(family, testColumn(), WithDimSource(rand.NewPCG(7, 8)))
			require.NoError(t, err)

			k0, _ := d.CreateCluster()
			k1, _ := d.CreateCluster()
			for i, x := range testColumn() {
				k := k0
				if x > 0 {
					k = k1
				}
				require.NoError(t, d.Incorporate(x, k), "datum %d", i)
			}

			for i := 0; i < 20; i++ {
				require.NoError(t, d.TransitionParams())
				require.NoError(t, d.TransitionHypers())
				require.NoError(t, d.Hypers().Validate(), "iteration %d", i)
			}
			for _, name := range []string{"r", "s", "nu"} {
				assert.Greater(t, d.Hypers().Get(name), 0.0, "hyper %q", name)
			}
		})
	}
}

func TestDimTransitionHypersMovesOffGrid(t *testing.T) {
	d, err := NewDim("normal", testColumn(),
		WithDimSource(rand.NewPCG(11, 12)),
		WithDimHypers(dist.NewNormalHypers(0, 1, 1, 1)),
	)
	require.NoError(t, err)

	k0, _ := d.CreateCluster()
	for _, x := range testColumn() {
		require.NoError(t, d.Incorporate(x, k0))
	}

	before := d.Hypers().Clone()
	moved := false
	for i := 0; i < 50 && !moved; i++ {
		require.NoError(t, d.TransitionHypers())
		for _, name := range before.Names() {
			if d.Hypers().Get(name) != before.Get(name) {
				moved = true
			}
		}
	}
	assert.True(t, moved, "grid Gibbs never left the initial hyperparameters")
}

// unstableComponent fails every density evaluation, standing in for a
// cluster whose statistics have degenerated numerically.
type unstableComponent struct {
	stats gpm.SuffStats
}

func (c *unstableComponent) Incorporate(x float64)  { c.stats.Incorporate(x) }
func (c *unstableComponent) Remove(x float64) error { return c.stats.Remove(x) }

func (c *unstableComponent) PredictiveLogp(float64) (float64, error) {
	return 0, errors.NewNumericError("unstableComponent.PredictiveLogp")
}

func (c *unstableComponent) SingletonLogp(float64) (float64, error) {
	return 0, errors.NewNumericError("unstableComponent.SingletonLogp")
}

func (c *unstableComponent) MarginalLogp() (float64, error) {
	return 0, errors.NewNumericError("unstableComponent.MarginalLogp")
}

func (c *unstableComponent) Simulate() (float64, error) {
	return 0, errors.NewNumericError("unstableComponent.Simulate")
}

func (c *unstableComponent) TransitionParams() error { return nil }
func (c *unstableComponent) Stats() gpm.SuffStats    { return c.stats }
func (c *unstableComponent) Hypers() *gpm.Hypers     { return nil }
func (c *unstableComponent) Name() string            { return "unstable" }
func (c *unstableComponent) IsCollapsed() bool       { return true }

func TestTransitionHypersWarnsOnDegenerateCluster(t *testing.T) {
	var captured []error
	errors.SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer errors.SetWarningHandler(nil)

	d, err := NewDim("normal", testColumn(), WithDimSource(rand.NewPCG(41, 42)))
	require.NoError(t, err)

	comp := &unstableComponent{}
	for _, x := range []float64{2, 2, 2} {
		comp.Incorporate(x)
	}
	d.clusters = []gpm.ComponentModel{comp}

	// The transition must finish: every trial is rejected and the prior
	// hypers survive, with the degenerate cluster reported as a warning.
	before := d.Hypers().Clone()
	require.NoError(t, d.TransitionHypers())
	for _, name := range before.Names() {
		assert.Equal(t, before.Get(name), d.Hypers().Get(name))
	}

	var warning *errors.DegenerateClusterWarning
	for _, w := range captured {
		if dw, ok := w.(*errors.DegenerateClusterWarning); ok {
			warning = dw
		}
	}
	require.NotNil(t, warning, "expected a degenerate-cluster warning")
	assert.Equal(t, "normal", warning.Family)
	assert.Equal(t, 0, warning.Cluster)
	assert.Equal(t, 3, warning.N)
}

func TestDimSingletonComponentIsEmpty(t *testing.T) {
	d, err := NewDim("normal_uc", testColumn(), WithDimSource(rand.NewPCG(13, 14)))
	require.NoError(t, err)

	comp, err := d.SingletonComponent()
	require.NoError(t, err)
	assert.True(t, comp.Stats().Empty())
	assert.Equal(t, 0, d.NumClusters(),
		"a singleton proposal must not join the column until it wins")
}

func TestLogPflip(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))

	idx, err := logPflip([]float64{math.Inf(-1), 0, math.Inf(-1)}, rng)
	require.NoError(t, err)
	assert.Equal(t, 1, idx, "the only finite weight must always win")

	_, err = logPflip([]float64{math.Inf(-1), math.Inf(-1)}, rng)
	require.Error(t, err)
	var numErr *errors.NumericError
	assert.True(t, errors.As(err, &numErr))

	counts := make([]int, 2)
	for i := 0; i < 2000; i++ {
		idx, err := logPflip([]float64{math.Log(0.25), math.Log(0.75)}, rng)
		require.NoError(t, err)
		counts[idx]++
	}
	assert.Greater(t, counts[1], counts[0])
	assert.InDelta(t, 1500, counts[1], 150)
}

func TestLogPflipShiftInvariant(t *testing.T) {
	// Normalization must make the draw invariant to a constant shift of
	// the log weights.
	a := rand.New(rand.NewPCG(31, 32))
	b := rand.New(rand.NewPCG(31, 32))
	weights := []float64{-3.0, -1.0, -2.5}
	shifted := make([]float64, len(weights))
	for i, w := range weights {
		shifted[i] = w + 100
	}
	for i := 0; i < 200; i++ {
		ia, err := logPflip(weights, a)
		require.NoError(t, err)
		ib, err := logPflip(shifted, b)
		require.NoError(t, err)
		require.Equal(t, ia, ib)
	}
}
