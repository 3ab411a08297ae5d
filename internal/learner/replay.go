package learner

import (
	"context"
	"errors"

	"github.com/rosterwire/leaguerank/internal/backtest"
	"github.com/rosterwire/leaguerank/internal/composite"
	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/weights"
)

// ErrNoReplayableEvidence means none of the evidence rows could be
// re-evaluated from stored snapshots.
var ErrNoReplayableEvidence = errors.New("learner: no replayable evidence")

// ReplayEvaluator builds a CandidateEvaluator that re-scores the evidence
// window's snapshots under candidate parameters: stored sub-scores are
// recombined through the candidate-adjusted weight profile and each row is
// re-graded against its original target. Strictly more accurate than the
// projection heuristic; rows whose snapshots or outcomes are gone are
// skipped.
func ReplayEvaluator(ev *backtest.Evaluator, resolver *weights.Resolver, class domain.LeagueClass) CandidateEvaluator {
	return func(ctx context.Context, cand domain.LearnedParams, evidence []*domain.BacktestResult) (float64, error) {
		profile := resolver.Resolve(class.Phase, class.Format, &cand)
		recompute := func(team domain.SnapshotTeam) float64 {
			return float64(composite.Score(team.Scores, profile)) / 100
		}

		rescored := make([]*domain.BacktestResult, 0, len(evidence))
		for _, row := range evidence {
			res, err := ev.Evaluate(ctx, backtest.Request{
				LeagueID:   row.LeagueID,
				Season:     row.Season,
				Week:       row.WeekEvaluated,
				Target:     row.Target,
				SegmentKey: row.SegmentKey,
				Recompute:  recompute,
			})
			if err != nil {
				continue
			}
			rescored = append(rescored, res)
		}
		if len(rescored) == 0 {
			return 0, ErrNoReplayableEvidence
		}
		return Objective(rescored), nil
	}
}
