package scores

import (
	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/stats"
)

// riskPenaltyRate shaves up to 5% off a roster whose value is concentrated
// in currently-injured players.
const riskPenaltyRate = 0.05

// powerScore blends starter and bench value percentiles by the
// starter/bench split, then discounts for starter health and injury risk
// concentration.
func (c *Calculator) powerScore(f TeamFacts, prof InjuryProfile) int {
	split := c.cfg.Params.StarterBenchSplit
	if split <= 0 {
		split = defaultStarterSplit(c.cfg.Format)
	}

	starterPct := stats.PercentileRank(c.starterByRoster[f.RosterID], c.starterValues)
	benchPct := stats.PercentileRank(rosterValue(f.Players, c.cfg.Format, false), c.benchValues)
	base := split*starterPct + (1-split)*benchPct

	inj := c.cfg.Params.InjuryInfluence
	health := (1 - inj) + inj*prof.PowerHealthRatio
	risk := 1 - riskPenaltyRate*prof.RiskConcentration

	return toScore(base * health * risk)
}

func defaultStarterSplit(format domain.Format) float64 {
	if format == domain.FormatRedraft {
		return 0.80
	}
	return 0.70
}
