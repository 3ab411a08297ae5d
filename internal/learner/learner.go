// Package learner adjusts the four tunable scoring parameters per league
// class from accumulated backtest evidence. It moves slowly: bounded
// coordinate search, a hard per-cycle movement cap, and no write at all
// unless the candidate beats the baseline by a clear margin.
package learner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/persistence"
)

const (
	// minEvidence is the floor on backtest rows before any tuning runs.
	minEvidence = 5

	// evidenceWindow is how many recent rows a cycle considers.
	evidenceWindow = 10

	// movementCap bounds how far any parameter moves per cycle.
	// Luck dampening lives on a wider scale and gets its own cap.
	movementCap     = 0.03
	luckMovementCap = 0.30

	// improvementGate is the relative objective gain a candidate must
	// show before it is applied.
	improvementGate = 0.005
)

// Projection sensitivity constants. Without a replay evaluator the learner
// cannot re-score history under candidate parameters, so it projects
// objective movement from observed miscalibration instead. Only the two
// parameters with a defensible directional signal get a projected gain;
// every moved step pays a small regularization penalty.
const (
	dampCalibrationGain = 0.010
	splitOrderingGain   = 0.008
	stepMovePenalty     = 0.002
	eceTarget           = 0.05
	ndcgTarget          = 0.90
)

// ErrInsufficientEvidence means the segment has too few backtest rows to
// tune against. Not an error condition worth retrying; evidence accrues
// weekly.
var ErrInsufficientEvidence = errors.New("learner: not enough evidence")

// Search order is fixed so cycles are deterministic.
var paramOrder = []string{
	domain.ParamInjuryInfluence,
	domain.ParamStarterBenchSplit,
	domain.ParamLuckDampening,
	domain.ParamFutureCapitalInfluence,
}

// CandidateEvaluator scores one candidate parameter set against the
// evidence window. Higher is better. Wiring a replay-based evaluator (one
// that recomputes composites from snapshots) is strictly more accurate
// than the built-in projection.
type CandidateEvaluator func(ctx context.Context, candidate domain.LearnedParams, evidence []*domain.BacktestResult) (float64, error)

// ParamMove records one parameter's journey through a cycle: where it was,
// what the search wanted, and what the movement cap allowed.
type ParamMove struct {
	Name     string  `json:"name"`
	Previous float64 `json:"previous"`
	Proposed float64 `json:"proposed"`
	Applied  float64 `json:"applied"`
}

// Report summarizes one learning cycle.
type Report struct {
	Class     string               `json:"class"`
	Evidence  int                  `json:"evidence"`
	Baseline  float64              `json:"baseline"`
	Candidate float64              `json:"candidate"`
	Improved  bool                 `json:"improved"`
	Applied   bool                 `json:"applied"`
	Params    domain.LearnedParams `json:"params"`
	Moves     []ParamMove          `json:"moves,omitempty"`
}

// Learner runs tuning cycles for league-class segments.
type Learner struct {
	backtests persistence.BacktestStore
	params    persistence.ParamsStore
	evaluate  CandidateEvaluator
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures a Learner.
type Option func(*Learner)

// WithEvaluator replaces the projection heuristic with a real candidate
// evaluator.
func WithEvaluator(eval CandidateEvaluator) Option {
	return func(l *Learner) { l.evaluate = eval }
}

// WithClock overrides the applied-at timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Learner) { l.now = now }
}

// New builds a Learner.
func New(backtests persistence.BacktestStore, params persistence.ParamsStore, logger zerolog.Logger, opts ...Option) *Learner {
	l := &Learner{
		backtests: backtests,
		params:    params,
		log:       logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Objective blends the evidence window's metrics into one maximization
// target: calibration weighted heaviest, then ordering quality, then rank
// correlation.
func Objective(results []*domain.BacktestResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var brier, ndcg, spearman float64
	for _, r := range results {
		brier += r.Brier
		ndcg += r.NDCG
		spearman += r.Spearman
	}
	n := float64(len(results))
	return 0.4*(1-brier/n) + 0.35*(ndcg/n) + 0.25*((spearman/n+1)/2)
}

// Run executes one learning cycle for a league class. It returns
// ErrInsufficientEvidence when the segment has under five backtest rows.
// Parameters are persisted only when the best candidate clears the
// improvement gate, and never move more than the cap from the previously
// applied values.
func (l *Learner) Run(ctx context.Context, class domain.LeagueClass) (*Report, error) {
	key := class.Key()

	evidence, err := l.backtests.RecentBySegment(ctx, key, evidenceWindow)
	if err != nil {
		return nil, fmt.Errorf("load backtest evidence for %s: %w", key, err)
	}
	if len(evidence) < minEvidence {
		return nil, ErrInsufficientEvidence
	}

	var current domain.LearnedParams
	switch applied, err := l.params.LatestApplied(ctx, key); {
	case err == nil:
		current = *applied
	case errors.Is(err, persistence.ErrNotFound):
		current = domain.DefaultLearnedParams(class)
	default:
		return nil, fmt.Errorf("load applied params for %s: %w", key, err)
	}

	baseline := Objective(evidence)
	eval := l.evaluate
	if eval == nil {
		eval = l.projection(current, baseline)
	}

	// Single-pass greedy coordinate search: each parameter tries up to
	// two steps in both directions from the best set so far.
	best := current
	bestScore := baseline
	bounds := domain.ParamBounds()
	for _, name := range paramOrder {
		bound := bounds[name]
		base := best.Get(name)
		for _, k := range []float64{-2, -1, 1, 2} {
			cand := best.With(name, base+k*bound.Step)
			if cand.Get(name) == best.Get(name) {
				continue
			}
			score, err := eval(ctx, cand, evidence)
			if err != nil {
				l.log.Warn().Err(err).Str("class", key).Str("param", name).
					Msg("candidate evaluation failed, skipping")
				continue
			}
			if score > bestScore {
				bestScore = score
				best = cand
			}
		}
	}

	denom := baseline
	if denom < 1e-9 {
		denom = 1e-9
	}
	improved := (bestScore-baseline)/denom > improvementGate

	applied := current
	var moves []ParamMove
	for _, name := range paramOrder {
		prev := current.Get(name)
		proposed := best.Get(name)
		if proposed == prev {
			continue
		}
		cap := movementCap
		if name == domain.ParamLuckDampening {
			cap = luckMovementCap
		}
		value := clampMovement(prev, proposed, cap)
		applied = applied.With(name, value)
		moves = append(moves, ParamMove{Name: name, Previous: prev, Proposed: proposed, Applied: value})
	}

	report := &Report{
		Class:     key,
		Evidence:  len(evidence),
		Baseline:  baseline,
		Candidate: bestScore,
		Improved:  improved,
		Params:    current,
		Moves:     moves,
	}

	if !improved || len(moves) == 0 {
		l.log.Info().Str("class", key).Float64("baseline", baseline).
			Float64("candidate", bestScore).Msg("learning cycle found no clear improvement")
		return report, nil
	}

	applied.Class = key
	applied.AppliedAt = l.now()
	if err := l.params.Apply(ctx, &applied); err != nil {
		return nil, fmt.Errorf("apply learned params for %s: %w", key, err)
	}
	report.Applied = true
	report.Params = applied

	l.log.Info().Str("class", key).Float64("baseline", baseline).
		Float64("candidate", bestScore).Int("moves", len(moves)).
		Msg("applied learned parameters")
	return report, nil
}

// projection is the fallback candidate scorer. It starts from the
// baseline, charges every moved step a penalty, and credits two
// directional signals: raising luck dampening when calibration error is
// high, raising the starter-bench split when ordering quality is low.
func (l *Learner) projection(current domain.LearnedParams, baseline float64) CandidateEvaluator {
	bounds := domain.ParamBounds()
	return func(_ context.Context, cand domain.LearnedParams, evidence []*domain.BacktestResult) (float64, error) {
		var eceSum, ndcgSum float64
		for _, r := range evidence {
			eceSum += r.ECE
			ndcgSum += r.NDCG
		}
		n := float64(len(evidence))
		avgECE := eceSum / n
		avgNDCG := ndcgSum / n

		score := baseline
		for _, name := range paramOrder {
			steps := math.Abs(cand.Get(name)-current.Get(name)) / bounds[name].Step
			score -= stepMovePenalty * steps
		}

		if avgECE > eceTarget {
			steps := (cand.LuckDampening - current.LuckDampening) / bounds[domain.ParamLuckDampening].Step
			signal := math.Min((avgECE-eceTarget)/eceTarget, 2)
			score += dampCalibrationGain * steps * signal
		}
		if avgNDCG < ndcgTarget {
			steps := (cand.StarterBenchSplit - current.StarterBenchSplit) / bounds[domain.ParamStarterBenchSplit].Step
			signal := math.Min((ndcgTarget-avgNDCG)/0.10, 2)
			score += splitOrderingGain * steps * signal
		}
		return score, nil
	}
}

// clampMovement bounds how far a value may travel from its previous
// applied value in one cycle.
func clampMovement(prev, proposed, cap float64) float64 {
	delta := proposed - prev
	if delta > cap {
		delta = cap
	}
	if delta < -cap {
		delta = -cap
	}
	return prev + delta
}
