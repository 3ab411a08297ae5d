package backtest

import (
	"math"
	"sort"

	"github.com/rosterwire/leaguerank/internal/stats"
)

// eceBins is the fixed equal-width bin count for expected calibration
// error.
const eceBins = 10

// Brier is the mean squared error between predicted probabilities and
// outcomes. Lower is better; 0.25 is the score of an uninformed 0.5
// prediction against balanced binary outcomes.
func Brier(predicted, actual []float64) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return 0
	}
	var sum float64
	for i := range predicted {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return sum / float64(len(predicted))
}

// ECE buckets predictions into 10 equal-width bins and sums the
// population-weighted gap between mean prediction and mean outcome per
// bin.
func ECE(predicted, actual []float64) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return 0
	}

	type bin struct {
		count   int
		predSum float64
		actSum  float64
	}
	bins := make([]bin, eceBins)

	for i, p := range predicted {
		idx := int(stats.Clamp01(p) * eceBins)
		if idx == eceBins {
			idx = eceBins - 1
		}
		bins[idx].count++
		bins[idx].predSum += p
		bins[idx].actSum += actual[i]
	}

	n := float64(len(predicted))
	var ece float64
	for _, b := range bins {
		if b.count == 0 {
			continue
		}
		c := float64(b.count)
		gap := math.Abs(b.predSum/c - b.actSum/c)
		ece += (c / n) * gap
	}
	return ece
}

// NDCG orders actual outcomes by predicted rank and normalizes their
// discounted cumulative gain by the ideal ordering's. 1 means the
// predictions ordered outcomes perfectly.
func NDCG(predicted, actual []float64) float64 {
	n := len(predicted)
	if n == 0 || n != len(actual) {
		return 0
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return predicted[order[a]] > predicted[order[b]]
	})

	var dcg float64
	for pos, idx := range order {
		dcg += actual[idx] / math.Log2(float64(pos)+2)
	}

	ideal := append([]float64(nil), actual...)
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
	var idcg float64
	for pos, gain := range ideal {
		idcg += gain / math.Log2(float64(pos)+2)
	}

	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// SpearmanRanks correlates predicted against actual outcome values by
// rank.
func SpearmanRanks(predicted, actual []float64) float64 {
	return stats.Spearman(predicted, actual)
}
