package pipeline

import (
	"sort"
	"sync"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/telemetry"
)

// Feed names used in quality caveats, telemetry labels, and logs.
const (
	feedValuation  = "valuation"
	feedTrades     = "trades"
	feedInjuries   = "injuries"
	feedDemand     = "demand"
	feedScoreboard = "scoreboard"
	feedBracket    = "bracket"
)

var feedCaveats = map[string]string{
	feedValuation:  "valuation feed unavailable; market, power, and future-capital scores use neutral player values",
	feedTrades:     "trade history unavailable; skill score uses a neutral trade component",
	feedInjuries:   "injury feed unavailable; all rosters treated as healthy",
	feedDemand:     "demand index unavailable; positional demand treated as neutral",
	feedScoreboard: "weekly scoreboards unavailable; expected wins and consistency use neutral values",
	feedBracket:    "playoff bracket unavailable; post-season finishes treated as missed",
}

// qualityTracker accumulates degraded feeds across the run's concurrent
// fetches and folds them into the quality signal attached to every record.
type qualityTracker struct {
	mu       sync.Mutex
	degraded []string
}

func (q *qualityTracker) degrade(feed string) {
	q.mu.Lock()
	q.degraded = append(q.degraded, feed)
	q.mu.Unlock()
	telemetry.FeedDegradations.WithLabelValues(feed).Inc()
}

// signal grades the run: every feed healthy is FULL/HIGH, one degraded
// feed is PARTIAL/MEDIUM, more is MINIMAL/LOW. Scores are still produced
// either way; the signal is how consumers tell a confident run from a
// neutral-filled one.
func (q *qualityTracker) signal() domain.QualitySignal {
	q.mu.Lock()
	defer q.mu.Unlock()

	sort.Strings(q.degraded)
	caveats := make([]string, 0, len(q.degraded))
	for _, feed := range q.degraded {
		if c, ok := feedCaveats[feed]; ok {
			caveats = append(caveats, c)
		}
	}

	switch len(q.degraded) {
	case 0:
		return domain.QualitySignal{Confidence: domain.ConfidenceHigh, Coverage: domain.CoverageFull}
	case 1:
		return domain.QualitySignal{Confidence: domain.ConfidenceMedium, Coverage: domain.CoveragePartial, Caveats: caveats}
	default:
		return domain.QualitySignal{Confidence: domain.ConfidenceLow, Coverage: domain.CoverageMinimal, Caveats: caveats}
	}
}
