package dist

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/crosscat/core/gpm"
)

// An empty collapsed component carries no evidence: its marginal is
// exactly zero (the posterior normalizer equals the prior normalizer).
func TestNormalMarginalEmpty(t *testing.T) {
	c, err := NewNormal(gpm.SuffStats{}, NewNormalHypers(0, 1, 1, 1), nil)
	if err != nil {
		t.Fatalf("NewNormal failed: %v", err)
	}
	got, err := c.MarginalLogp()
	if err != nil {
		t.Fatalf("MarginalLogp failed: %v", err)
	}
	if got != 0 {
		t.Errorf("MarginalLogp of empty component = %v, want 0", got)
	}
}

// Under the unit prior the bare-prior predictive at 0 is a Student-t with
// one degree of freedom and scale sqrt(2): log p(0) = -(log pi + log(2)/2).
func TestNormalPriorPredictiveStudentT(t *testing.T) {
	c, err := NewNormal(gpm.SuffStats{}, NewNormalHypers(0, 1, 1, 1), nil)
	if err != nil {
		t.Fatalf("NewNormal failed: %v", err)
	}
	got, err := c.PredictiveLogp(0)
	if err != nil {
		t.Fatalf("PredictiveLogp failed: %v", err)
	}
	want := -(math.Log(math.Pi) + 0.5*math.Log(2))
	if math.Abs(got-want) > tol {
		t.Errorf("PredictiveLogp(0) = %v, want %v", got, want)
	}
}

// Chain rule: the collapsed marginal of a dataset equals the sum of the
// sequential predictives as each point is incorporated.
func TestNormalMarginalChainRule(t *testing.T) {
	c, err := NewNormal(gpm.SuffStats{}, NewNormalHypers(0.3, 2, 1.5, 3), nil)
	if err != nil {
		t.Fatalf("NewNormal failed: %v", err)
	}

	data := []float64{1.2, -0.7, 0.4, 2.1, -1.3}
	sum := 0.0
	for _, x := range data {
		lp, err := c.PredictiveLogp(x)
		if err != nil {
			t.Fatalf("PredictiveLogp failed: %v", err)
		}
		sum += lp
		c.Incorporate(x)
	}

	marginal, err := c.MarginalLogp()
	if err != nil {
		t.Fatalf("MarginalLogp failed: %v", err)
	}
	if math.Abs(marginal-sum) > 1e-9 {
		t.Errorf("marginal = %v, sum of predictives = %v", marginal, sum)
	}
}

// For an empty component singleton and predictive coincide; the singleton
// ignores incorporated data afterwards.
func TestNormalSingletonIsBarePrior(t *testing.T) {
	c, err := NewNormal(gpm.SuffStats{}, NewNormalHypers(0, 1, 1, 1), nil)
	if err != nil {
		t.Fatalf("NewNormal failed: %v", err)
	}

	pred, _ := c.PredictiveLogp(0.8)
	sing, _ := c.SingletonLogp(0.8)
	if math.Abs(pred-sing) > tol {
		t.Errorf("empty component: predictive %v != singleton %v", pred, sing)
	}

	for _, x := range []float64{4, 4.5, 3.8} {
		c.Incorporate(x)
	}
	after, _ := c.SingletonLogp(0.8)
	if after != sing {
		t.Errorf("singleton changed with data: %v vs %v", after, sing)
	}
}

func TestNormalTransitionParamsNoop(t *testing.T) {
	c, err := NewNormal(gpm.SuffStats{}, NewNormalHypers(0, 1, 1, 1), nil)
	if err != nil {
		t.Fatalf("NewNormal failed: %v", err)
	}
	if err := c.TransitionParams(); err != nil {
		t.Errorf("collapsed TransitionParams must be a no-op, got %v", err)
	}
	if !c.IsCollapsed() {
		t.Error("Normal must report IsCollapsed")
	}
}

func TestNormalSimulateSeeded(t *testing.T) {
	var stats gpm.SuffStats
	for _, x := range []float64{10, 10.5, 9.5, 10.25} {
		stats.Incorporate(x)
	}
	c, err := NewNormal(stats, NewNormalHypers(0, 1, 1, 1), rand.NewPCG(11, 13))
	if err != nil {
		t.Fatalf("NewNormal failed: %v", err)
	}

	// Posterior concentrates near the data; draws should be finite and,
	// on average, in the data's neighborhood.
	sum := 0.0
	const draws = 2000
	for i := 0; i < draws; i++ {
		x, err := c.Simulate()
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Fatalf("Simulate produced %v", x)
		}
		sum += x
	}
	mean := sum / draws
	if mean < 5 || mean > 15 {
		t.Errorf("posterior-predictive mean = %v, expected near 10", mean)
	}
}

func TestNormalDefaultHypersAndGrids(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	h := defaultNormalHypers(data)
	if err := h.Validate(); err != nil {
		t.Errorf("default hypers must validate: %v", err)
	}
	if math.Abs(h.Get("m")-3) > tol {
		t.Errorf("m = %v, want the data mean 3", h.Get("m"))
	}

	grids, err := normalHyperGrids(data, 20)
	if err != nil {
		t.Fatalf("normalHyperGrids failed: %v", err)
	}
	for _, name := range []string{"m", "r", "s", "nu"} {
		if len(grids[name]) == 0 {
			t.Fatalf("missing grid for %q", name)
		}
	}
	// Positivity-constrained grids must only carry admissible candidates.
	for _, name := range []string{"r", "s", "nu"} {
		for _, v := range grids[name] {
			if !(v > 0) {
				t.Errorf("grid %q contains non-positive candidate %v", name, v)
			}
		}
	}

	if _, err := normalHyperGrids(nil, 20); err == nil {
		t.Error("empty data must be rejected")
	}
}
