// Package backtest replays persisted snapshots against real outcomes to
// grade prediction quality. Its results accumulate into the parameter
// learner's evidence base.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/persistence"
	"github.com/rosterwire/leaguerank/internal/providers"
)

// Season-end snapshots only count as ground truth from this week on.
const seasonEndWeek = 14

// DefaultPlayoffCutoff is the playoff qualification line when the league
// does not declare one.
const DefaultPlayoffCutoff = 6

var (
	// ErrInsufficientSample means fewer than four teams had snapshots;
	// no result is fabricated.
	ErrInsufficientSample = errors.New("backtest: insufficient sample")

	// ErrMissingOutcome means the ground truth for the requested target
	// is not yet observable (future matchups missing, season not over).
	ErrMissingOutcome = errors.New("backtest: outcome not observable")
)

const minTeams = 4

// Request identifies one evaluation: a league-week's snapshot graded
// against a target outcome.
type Request struct {
	LeagueID      string
	Season        int
	Week          int
	Target        domain.TargetType
	SegmentKey    string
	PlayoffCutoff int

	// Recompute, when set, re-derives each team's predicted value (for
	// candidate-parameter evaluation). Nil uses the stored composite.
	Recompute func(team domain.SnapshotTeam) float64
}

// Evaluator grades snapshots. The league provider is only needed for the
// win_pct_3w target; a nil provider skips that target.
type Evaluator struct {
	snapshots persistence.SnapshotStore
	league    providers.LeagueProvider
	log       zerolog.Logger
}

// NewEvaluator builds an Evaluator.
func NewEvaluator(snapshots persistence.SnapshotStore, league providers.LeagueProvider, logger zerolog.Logger) *Evaluator {
	return &Evaluator{snapshots: snapshots, league: league, log: logger}
}

// Evaluate computes one BacktestResult. The caller decides whether to
// persist it.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*domain.BacktestResult, error) {
	snap, err := e.snapshots.Get(ctx, req.LeagueID, req.Season, req.Week)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrInsufficientSample
		}
		return nil, fmt.Errorf("load snapshot for backtest: %w", err)
	}
	if len(snap.Teams) < minTeams {
		return nil, ErrInsufficientSample
	}

	predicted := make(map[int]float64, len(snap.Teams))
	for _, team := range snap.Teams {
		p := float64(team.Composite) / 100
		if req.Recompute != nil {
			p = req.Recompute(team)
		}
		predicted[team.RosterID] = p
	}

	var (
		actual  map[int]float64
		horizon int
	)
	switch req.Target {
	case domain.TargetWinPct3W:
		horizon = 3
		actual, err = e.forwardAllPlay(ctx, req, snap)
	case domain.TargetPlayoffQual:
		actual, err = e.seasonOutcome(ctx, req, snap, true)
	case domain.TargetChampionshipFinish:
		actual, err = e.seasonOutcome(ctx, req, snap, false)
	default:
		return nil, fmt.Errorf("unknown backtest target %q", req.Target)
	}
	if err != nil {
		return nil, err
	}

	// Stable team order: predicted descending, roster id ascending on
	// ties, so stored prediction triples are deterministic.
	teams := append([]domain.SnapshotTeam(nil), snap.Teams...)
	sort.SliceStable(teams, func(a, b int) bool {
		pa, pb := predicted[teams[a].RosterID], predicted[teams[b].RosterID]
		if pa != pb {
			return pa > pb
		}
		return teams[a].RosterID < teams[b].RosterID
	})

	predVec := make([]float64, 0, len(teams))
	actVec := make([]float64, 0, len(teams))
	triples := make([]domain.TeamPrediction, 0, len(teams))
	for i, team := range teams {
		p := predicted[team.RosterID]
		a := actual[team.RosterID]
		predVec = append(predVec, p)
		actVec = append(actVec, a)
		triples = append(triples, domain.TeamPrediction{
			RosterID:  team.RosterID,
			Predicted: p,
			Actual:    a,
			Rank:      i + 1,
		})
	}

	return &domain.BacktestResult{
		LeagueID:      req.LeagueID,
		Season:        req.Season,
		WeekEvaluated: req.Week,
		Target:        req.Target,
		HorizonWeeks:  horizon,
		SegmentKey:    req.SegmentKey,
		TeamCount:     len(teams),
		Brier:         Brier(predVec, actVec),
		ECE:           ECE(predVec, actVec),
		NDCG:          NDCG(predVec, actVec),
		Spearman:      SpearmanRanks(predVec, actVec),
		Teams:         triples,
	}, nil
}

// forwardAllPlay builds each team's all-play win rate over the three
// weeks following the evaluated one. Real matchup data is required; any
// missing week skips the evaluation.
func (e *Evaluator) forwardAllPlay(ctx context.Context, req Request, snap *domain.Snapshot) (map[int]float64, error) {
	if e.league == nil {
		return nil, ErrMissingOutcome
	}

	totals := make(map[int]float64, len(snap.Teams))
	for offset := 1; offset <= 3; offset++ {
		board, err := e.league.Scoreboard(ctx, req.LeagueID, req.Week+offset)
		if err != nil || len(board) < 2 {
			e.log.Debug().Str("league", req.LeagueID).Int("week", req.Week+offset).
				Msg("forward matchup data unavailable, skipping win_pct_3w evaluation")
			return nil, ErrMissingOutcome
		}
		for rosterID, credit := range providers.AllPlayCredits(board) {
			totals[rosterID] += credit
		}
	}

	actual := make(map[int]float64, len(snap.Teams))
	for _, team := range snap.Teams {
		actual[team.RosterID] = totals[team.RosterID] / 3
	}
	return actual, nil
}

// seasonOutcome grades against the final season snapshot: playoff
// qualification as 0/1 against the cutoff, or normalized final rank as a
// championship proxy.
func (e *Evaluator) seasonOutcome(ctx context.Context, req Request, snap *domain.Snapshot, qualification bool) (map[int]float64, error) {
	season, err := e.snapshots.Season(ctx, req.LeagueID, req.Season)
	if err != nil {
		return nil, fmt.Errorf("load season snapshots: %w", err)
	}

	var final *domain.Snapshot
	for _, s := range season {
		if s.Week >= seasonEndWeek && (final == nil || s.Week > final.Week) {
			final = s
		}
	}
	if final == nil {
		return nil, ErrMissingOutcome
	}

	cutoff := req.PlayoffCutoff
	if cutoff <= 0 {
		cutoff = DefaultPlayoffCutoff
	}

	n := len(final.Teams)
	actual := make(map[int]float64, n)
	for _, team := range final.Teams {
		if qualification {
			if team.Rank <= cutoff {
				actual[team.RosterID] = 1
			}
			continue
		}
		if n > 1 {
			actual[team.RosterID] = float64(n-team.Rank) / float64(n-1)
		}
	}
	return actual, nil
}
