package dist

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/crosscat/core/gpm"
)

func TestBernoulliPredictiveUniformPrior(t *testing.T) {
	c, err := NewBernoulli(gpm.SuffStats{}, NewBernoulliHypers(1, 1), nil)
	if err != nil {
		t.Fatalf("NewBernoulli failed: %v", err)
	}
	lp, err := c.PredictiveLogp(1)
	if err != nil {
		t.Fatalf("PredictiveLogp failed: %v", err)
	}
	if math.Abs(lp-math.Log(0.5)) > tol {
		t.Errorf("PredictiveLogp(1) = %v, want log(1/2)", lp)
	}
}

func TestBernoulliMarginalClosedForm(t *testing.T) {
	c, err := NewBernoulli(gpm.SuffStats{}, NewBernoulliHypers(1, 1), nil)
	if err != nil {
		t.Fatalf("NewBernoulli failed: %v", err)
	}
	for _, x := range []float64{1, 1, 0} {
		c.Incorporate(x)
	}
	got, err := c.MarginalLogp()
	if err != nil {
		t.Fatalf("MarginalLogp failed: %v", err)
	}
	// betaln(3, 2) - betaln(1, 1) = log(1/12)
	want := math.Log(1.0 / 12.0)
	if math.Abs(got-want) > tol {
		t.Errorf("MarginalLogp = %v, want %v", got, want)
	}
}

func TestBernoulliMarginalChainRule(t *testing.T) {
	c, err := NewBernoulli(gpm.SuffStats{}, NewBernoulliHypers(0.5, 2), nil)
	if err != nil {
		t.Fatalf("NewBernoulli failed: %v", err)
	}

	data := []float64{1, 0, 0, 1, 1, 0}
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
	if math.Abs(marginal-sum) > 1e-10 {
		t.Errorf("marginal = %v, sum of predictives = %v", marginal, sum)
	}
}

func TestBernoulliRejectsNonBinary(t *testing.T) {
	c, err := NewBernoulli(gpm.SuffStats{}, NewBernoulliHypers(1, 1), nil)
	if err != nil {
		t.Fatalf("NewBernoulli failed: %v", err)
	}
	lp, err := c.PredictiveLogp(0.5)
	if err != nil {
		t.Fatalf("PredictiveLogp failed: %v", err)
	}
	if !math.IsInf(lp, -1) {
		t.Errorf("PredictiveLogp(0.5) = %v, want -Inf", lp)
	}
}

func TestBernoulliSingletonIgnoresData(t *testing.T) {
	c, err := NewBernoulli(gpm.SuffStats{}, NewBernoulliHypers(1, 1), nil)
	if err != nil {
		t.Fatalf("NewBernoulli failed: %v", err)
	}
	before, _ := c.SingletonLogp(1)
	for i := 0; i < 10; i++ {
		c.Incorporate(1)
	}
	after, _ := c.SingletonLogp(1)
	if before != after {
		t.Errorf("singleton changed with data: %v vs %v", before, after)
	}
	// Predictive, by contrast, must have moved toward the ones.
	pred, _ := c.PredictiveLogp(1)
	if pred <= after {
		t.Errorf("predictive %v should exceed singleton %v after ten ones", pred, after)
	}
}

func TestBernoulliSimulate(t *testing.T) {
	c, err := NewBernoulli(gpm.SuffStats{}, NewBernoulliHypers(5, 1), rand.NewPCG(5, 6))
	if err != nil {
		t.Fatalf("NewBernoulli failed: %v", err)
	}
	ones := 0
	const draws = 1000
	for i := 0; i < draws; i++ {
		x, err := c.Simulate()
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}
		if x != 0 && x != 1 {
			t.Fatalf("Simulate produced %v, want 0 or 1", x)
		}
		if x == 1 {
			ones++
		}
	}
	// E[p] = 5/6 under Beta(5, 1); allow a generous band.
	if ones < 700 || ones > 950 {
		t.Errorf("drew %d ones out of %d, expected around 833", ones, draws)
	}
}
