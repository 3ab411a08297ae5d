package stats

import (
	"math"
	"sort"
)

// smallLeagueShrink pulls raw percentiles toward 0.5 when the population is
// tiny, so a 4-team league cannot produce overconfident extremes.
const (
	smallLeagueSize   = 6
	smallLeagueShrink = 0.7
)

// PercentileRank converts a value to its percentile within a population,
// in [0,1]. Ties receive the average rank of the tied group (mid-rank
// method). Populations under 2 carry no signal and return 0.5; populations
// under 6 are shrunk toward 0.5. Every sub-score normalizes through this
// one function.
func PercentileRank(value float64, population []float64) float64 {
	n := len(population)
	if n < 2 {
		return 0.5
	}

	below, equal := 0, 0
	for _, v := range population {
		switch {
		case v < value:
			below++
		case v == value:
			equal++
		}
	}

	// Mid-rank: count half of the tied group on each side.
	raw := (float64(below) + float64(equal-1)/2.0) / float64(n-1)
	if raw < 0 {
		raw = 0
	}
	if raw > 1 {
		raw = 1
	}

	if n < smallLeagueSize {
		return 0.5 + (raw-0.5)*smallLeagueShrink
	}
	return raw
}

// Ranks converts values to 1-based average ranks (ascending). Tied values
// share the mean of the ranks they span.
func Ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// Average rank across the tie group [i, j].
		avg := float64(i+j)/2.0 + 1.0
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// Spearman computes the rank correlation between two equal-length vectors,
// in [-1,1]. Fewer than 2 pairs, or a constant vector, returns 0.
func Spearman(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	rx := Ranks(x)
	ry := Ranks(y)
	return pearson(rx, ry)
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx, my := sx/n, sy/n

	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// CoefficientOfVariation returns stddev/mean, or 0 when the mean is 0 or
// fewer than 2 samples exist.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	if m == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(values)-1))
	return math.Abs(sd / m)
}

// Clamp01 bounds a value to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
