// Package antigaming caps unjustified week-over-week rank climbs. A team
// may climb freely only when at least one underlying metric moved enough to
// evidence the improvement; otherwise its climb is limited to one slot.
package antigaming

import (
	"sort"

	"github.com/rosterwire/leaguerank/internal/domain"
)

// Improvement thresholds a climbing team must clear on at least one metric.
const (
	starterValueThreshold = 0.02
	expectedWinsThreshold = 0.15
	healthRatioThreshold  = 0.03
	tradePremiumThreshold = 0.02
)

// TeamInput is one team's state entering the solver. Inputs must arrive in
// stable order; composite ties break by input position so identical inputs
// always produce identical ranks.
type TeamInput struct {
	RosterID  int
	Composite int
	Metrics   domain.RawMetrics
}

// Result is the solver's output for one team.
type Result struct {
	RosterID    int
	Rank        int
	RawRank     int
	Constrained bool
	PrevRank    *int
	Checks      []domain.Justification
}

// Apply re-ranks this week's composite order against last week's snapshot.
// With no previous snapshot every team is unconstrained and ranks follow
// composite order (cold start). The pass is single-shot and deterministic.
func Apply(teams []TeamInput, previous map[int]domain.SnapshotTeam) []Result {
	n := len(teams)
	results := make([]Result, n)

	// Raw composite order: descending composite, stable on input order.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return teams[order[a]].Composite > teams[order[b]].Composite
	})

	rawRank := make([]int, n)
	for pos, idx := range order {
		rawRank[idx] = pos + 1
	}

	type slotReq struct {
		idx     int
		minRank int
	}
	var unconstrained, constrained []slotReq

	for _, idx := range order {
		team := teams[idx]
		res := Result{
			RosterID: team.RosterID,
			RawRank:  rawRank[idx],
		}

		prev, hasPrev := previous[team.RosterID]
		if hasPrev {
			pr := prev.Rank
			res.PrevRank = &pr
			res.Checks = evaluateChecks(prev, team.Metrics)
		}

		climb := 0
		if hasPrev {
			climb = prev.Rank - rawRank[idx]
		}

		switch {
		case !hasPrev || climb <= 0 || anyPassed(res.Checks):
			unconstrained = append(unconstrained, slotReq{idx: idx, minRank: 1})
		default:
			// Unjustified climb: at most one slot better than last week.
			minRank := prev.Rank - 1
			if minRank < 1 {
				minRank = 1
			}
			res.Constrained = true
			constrained = append(constrained, slotReq{idx: idx, minRank: minRank})
		}
		results[idx] = res
	}

	taken := make([]bool, n+1)

	// Constrained teams claim their floors first, ordered by floor then by
	// composite (slices already hold composite order; a stable sort on
	// minRank preserves it). Reserving floors before filling unconstrained
	// slots is what actually caps a climb at prevRank-1: filling
	// unconstrained teams first would shove capped teams to the bottom
	// instead.
	sort.SliceStable(constrained, func(a, b int) bool {
		return constrained[a].minRank < constrained[b].minRank
	})
	for _, req := range constrained {
		slot := lowestFree(taken, req.minRank)
		if slot == 0 {
			// The floor exceeds the current league size (teams left since
			// last week); the worst remaining slot is the closest fit.
			slot = highestFree(taken)
		}
		taken[slot] = true
		results[req.idx].Rank = slot
	}

	// Unconstrained teams fill the remaining slots best-first, in
	// composite order.
	for _, req := range unconstrained {
		slot := lowestFree(taken, 1)
		taken[slot] = true
		results[req.idx].Rank = slot
	}

	// The flag marks any divergence from raw composite order, including
	// teams displaced by a capped neighbor.
	for i := range results {
		results[i].Constrained = results[i].Constrained || results[i].Rank != results[i].RawRank
	}
	return results
}

func lowestFree(taken []bool, from int) int {
	for slot := from; slot < len(taken); slot++ {
		if !taken[slot] {
			return slot
		}
	}
	return 0
}

func highestFree(taken []bool) int {
	for slot := len(taken) - 1; slot >= 1; slot-- {
		if !taken[slot] {
			return slot
		}
	}
	return 0
}

func anyPassed(checks []domain.Justification) bool {
	for _, c := range checks {
		if c.Passed {
			return true
		}
	}
	return false
}

func evaluateChecks(prev domain.SnapshotTeam, current domain.RawMetrics) []domain.Justification {
	return []domain.Justification{
		check("starter_value_pct", prev.Metrics.StarterValuePct, current.StarterValuePct, starterValueThreshold),
		check("expected_wins", prev.Metrics.ExpectedWins, current.ExpectedWins, expectedWinsThreshold),
		check("injury_health_ratio", prev.Metrics.InjuryHealthRatio, current.InjuryHealthRatio, healthRatioThreshold),
		check("trade_efficiency_premium", prev.Metrics.TradeEfficiencyPremium, current.TradeEfficiencyPremium, tradePremiumThreshold),
	}
}

func check(metric string, prev, cur, threshold float64) domain.Justification {
	delta := cur - prev
	return domain.Justification{
		Metric:    metric,
		Previous:  prev,
		Current:   cur,
		Delta:     delta,
		Threshold: threshold,
		Passed:    delta >= threshold,
	}
}
