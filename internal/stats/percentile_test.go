package stats

import (
	"math"
	"testing"
)

func TestPercentileRank_MidRankTies(t *testing.T) {
	pop := []float64{10, 20, 20, 30, 40, 50, 60, 70}

	// The two 20s share the average of ranks 2 and 3.
	got := PercentileRank(20, pop)
	want := (1.0 + 0.5) / 7.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("tied percentile = %f, want %f", got, want)
	}

	if got := PercentileRank(10, pop); got != 0 {
		t.Errorf("minimum percentile = %f, want 0", got)
	}
	if got := PercentileRank(70, pop); got != 1 {
		t.Errorf("maximum percentile = %f, want 1", got)
	}
}

func TestPercentileRank_TinyPopulations(t *testing.T) {
	if got := PercentileRank(5, []float64{5}); got != 0.5 {
		t.Errorf("population of 1 = %f, want 0.5", got)
	}
	if got := PercentileRank(5, nil); got != 0.5 {
		t.Errorf("empty population = %f, want 0.5", got)
	}

	// 4-team league: raw extreme of 1.0 shrinks to 0.85.
	got := PercentileRank(40, []float64{10, 20, 30, 40})
	if math.Abs(got-0.85) > 1e-9 {
		t.Errorf("shrunk extreme = %f, want 0.85", got)
	}
}

func TestPercentileRank_ShiftInvariant(t *testing.T) {
	pop := []float64{3, 7, 11, 19, 23, 31, 44, 59}
	const shift = 1234.5

	shifted := make([]float64, len(pop))
	for i, v := range pop {
		shifted[i] = v + shift
	}
	for _, v := range pop {
		a := PercentileRank(v, pop)
		b := PercentileRank(v+shift, shifted)
		if math.Abs(a-b) > 1e-12 {
			t.Fatalf("percentile of %f changed under shift: %f vs %f", v, a, b)
		}
	}
}

func TestRanks_Ties(t *testing.T) {
	ranks := Ranks([]float64{10, 30, 30, 20})
	want := []float64{1, 3.5, 3.5, 2}
	for i := range want {
		if ranks[i] != want[i] {
			t.Fatalf("ranks = %v, want %v", ranks, want)
		}
	}
}

func TestSpearman(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	if got := Spearman(x, y); math.Abs(got-1) > 1e-9 {
		t.Errorf("perfect monotone = %f, want 1", got)
	}

	rev := []float64{10, 8, 6, 4, 2}
	if got := Spearman(x, rev); math.Abs(got+1) > 1e-9 {
		t.Errorf("perfect inverse = %f, want -1", got)
	}

	if got := Spearman(x, []float64{7, 7, 7, 7, 7}); got != 0 {
		t.Errorf("constant vector = %f, want 0", got)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if got := CoefficientOfVariation([]float64{100, 100, 100}); got != 0 {
		t.Errorf("no variance = %f, want 0", got)
	}
	if got := CoefficientOfVariation([]float64{90, 110}); got <= 0 {
		t.Errorf("expected positive CV, got %f", got)
	}
}
