package scores

import (
	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/stats"
)

// Waiver and draft skill components await dedicated data feeds; until then
// they sit at the neutral midpoint.
const placeholderComponent = 0.5

type skillWeights struct {
	trade   float64
	waiver  float64
	draft   float64
	process float64
}

func skillWeightsFor(format domain.Format) skillWeights {
	if format == domain.FormatRedraft {
		return skillWeights{trade: 0.25, waiver: 0.35, draft: 0.10, process: 0.30}
	}
	return skillWeights{trade: 0.35, waiver: 0.20, draft: 0.25, process: 0.20}
}

// skillScore blends historical trade premium percentile with
// scoring-process consistency percentile. Dynasty weighting favors trade
// skill; redraft favors in-season management.
func (c *Calculator) skillScore(f TeamFacts) int {
	w := skillWeightsFor(c.cfg.Format)

	tradePct := stats.PercentileRank(c.tradeByRoster[f.RosterID], c.tradeAverages)
	processPct := stats.PercentileRank(processConsistency(f.WeeklyPoints), c.processScores)

	blend := w.trade*tradePct +
		w.waiver*placeholderComponent +
		w.draft*placeholderComponent +
		w.process*processPct
	return toScore(blend)
}
