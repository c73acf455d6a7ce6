package gpm

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/crosscat/pkg/errors"
)

func TestSuffStatsIncorporate(t *testing.T) {
	var s SuffStats
	s.Incorporate(2)
	s.Incorporate(-3)

	if s.N != 2 {
		t.Errorf("N = %d, want 2", s.N)
	}
	if s.SumX != -1 {
		t.Errorf("SumX = %v, want -1", s.SumX)
	}
	if s.SumXSq != 13 {
		t.Errorf("SumXSq = %v, want 13", s.SumXSq)
	}
}

// Any permutation of the same multiset of data must produce identical
// statistics, up to floating-point rounding in the running sums.
func TestSuffStatsPermutationInvariance(t *testing.T) {
	data := []float64{1.5, -2.25, 0.75, 4.0, -1.0, 3.5, 0.0, 2.125}

	var forward SuffStats
	for _, x := range data {
		forward.Incorporate(x)
	}

	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 20; trial++ {
		perm := rng.Perm(len(data))
		var s SuffStats
		for _, i := range perm {
			s.Incorporate(data[i])
		}
		if s.N != forward.N {
			t.Fatalf("N = %d, want %d", s.N, forward.N)
		}
		if math.Abs(s.SumX-forward.SumX) > 1e-9 {
			t.Fatalf("SumX = %v, want %v", s.SumX, forward.SumX)
		}
		if math.Abs(s.SumXSq-forward.SumXSq) > 1e-9 {
			t.Fatalf("SumXSq = %v, want %v", s.SumXSq, forward.SumXSq)
		}
	}
}

func TestSuffStatsRemoveIsInverse(t *testing.T) {
	var s SuffStats
	s.Incorporate(1.25)
	s.Incorporate(-0.5)
	before := s

	s.Incorporate(3.75)
	if err := s.Remove(3.75); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if s != before {
		t.Errorf("stats after incorporate+remove = %+v, want %+v", s, before)
	}
}

func TestSuffStatsRemoveUnderflow(t *testing.T) {
	var s SuffStats
	err := s.Remove(1.0)
	if err == nil {
		t.Fatal("expected StateError when removing from empty stats")
	}
	var stateErr *errors.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected *StateError, got %T", err)
	}
}

func TestSuffStatsEmptyResetsExactly(t *testing.T) {
	var s SuffStats
	s.Incorporate(0.1)
	if err := s.Remove(0.1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !s.Empty() || s.SumX != 0 || s.SumXSq != 0 {
		t.Errorf("empty stats must be exactly zero, got %+v", s)
	}
}

// Empty must be callable on a non-addressable value, such as the copy a
// component returns from Stats().
func TestSuffStatsEmptyOnReturnedValue(t *testing.T) {
	fresh := func() SuffStats { return SuffStats{} }
	if !fresh().Empty() {
		t.Error("zero-value stats must report empty")
	}
	held := func() SuffStats {
		var s SuffStats
		s.Incorporate(1)
		return s
	}
	if held().Empty() {
		t.Error("stats holding a datum must not report empty")
	}
}
