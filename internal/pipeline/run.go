// Package pipeline orchestrates one ranking run per league: fetch, score,
// blend, constrain, persist. Upstream feeds degrade to neutral inputs
// instead of failing the run; only the league feed itself is required.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rosterwire/leaguerank/internal/antigaming"
	"github.com/rosterwire/leaguerank/internal/composite"
	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/persistence"
	"github.com/rosterwire/leaguerank/internal/providers"
	"github.com/rosterwire/leaguerank/internal/scores"
	"github.com/rosterwire/leaguerank/internal/telemetry"
	"github.com/rosterwire/leaguerank/internal/weights"
)

// Runner executes ranking runs. It owns no state between runs; everything
// durable lives in the snapshot store.
type Runner struct {
	bundle    providers.Bundle
	snapshots persistence.SnapshotStore
	params    persistence.ParamsStore
	resolver  *weights.Resolver
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock injects a time source for deterministic runs.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner builds a Runner.
func NewRunner(bundle providers.Bundle, snapshots persistence.SnapshotStore, params persistence.ParamsStore, resolver *weights.Resolver, logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		bundle:    bundle,
		snapshots: snapshots,
		params:    params,
		resolver:  resolver,
		log:       logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunResult is the in-memory output of one league run, ordered by final
// rank. The persisted snapshot is the durable counterpart.
type RunResult struct {
	RunID    string                   `json:"run_id"`
	LeagueID string                   `json:"league_id"`
	Season   int                      `json:"season"`
	Week     int                      `json:"week"`
	Phase    domain.Phase             `json:"phase"`
	Format   domain.Format            `json:"format"`
	Class    string                   `json:"class"`
	Quality  domain.QualitySignal     `json:"quality"`
	Records  []domain.TeamScoreRecord `json:"records"`
}

// fetched holds everything the concurrent fetch phase produced. Optional
// feeds that failed are left at their zero values.
type fetched struct {
	values   map[string]providers.PlayerValue
	trades   []providers.Trade
	injuries map[string]providers.InjuryReport
	demand   map[string]providers.PositionDemand
	boards   map[int][]providers.TeamPoints
	bracket  []providers.BracketFinish
	previous *domain.Snapshot
}

// RunLeague executes one full ranking run for a league.
func (r *Runner) RunLeague(ctx context.Context, leagueID string) (*RunResult, error) {
	runID := uuid.NewString()
	start := r.now()
	log := r.log.With().Str("run_id", runID).Str("league", leagueID).Logger()

	league, err := r.bundle.League.League(ctx, leagueID)
	if err != nil {
		telemetry.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("fetch league %s: %w", leagueID, err)
	}
	rosters, err := r.bundle.League.Rosters(ctx, leagueID)
	if err != nil {
		telemetry.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("fetch rosters for %s: %w", leagueID, err)
	}
	if len(rosters) == 0 {
		telemetry.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("league %s has no rosters", leagueID)
	}
	sort.Slice(rosters, func(a, b int) bool { return rosters[a].RosterID < rosters[b].RosterID })

	phase := domain.ResolvePhase(league.Status, league.CurrentWeek)
	format := domain.FormatRedraft
	if league.Dynasty {
		format = domain.FormatDynasty
	}
	class := domain.LeagueClass{Format: format, Superflex: league.Superflex, Phase: phase}

	quality := &qualityTracker{}
	data := r.fetchAll(ctx, league, rosters, phase, quality, log)

	params := r.resolveParams(ctx, class, log)
	facts := assembleFacts(league, rosters, data)

	demand := make(map[string]scores.DemandScore, len(data.demand))
	for pos, d := range data.demand {
		demand[pos] = scores.DemandScore{Score: d.Score, Sample: d.Sample}
	}

	calc := scores.NewCalculator(scores.Config{
		Phase:  phase,
		Format: format,
		Params: params,
		Demand: demand,
		Now:    start,
	}, facts)
	profile := r.resolver.Resolve(phase, format, &params)

	inputs := make([]antigaming.TeamInput, 0, len(facts))
	subByRoster := make(map[int]domain.SubScores, len(facts))
	metricsByRoster := make(map[int]domain.RawMetrics, len(facts))
	for _, f := range facts {
		sub, metrics := calc.Score(f)
		subByRoster[f.RosterID] = sub
		metricsByRoster[f.RosterID] = metrics
		inputs = append(inputs, antigaming.TeamInput{
			RosterID:  f.RosterID,
			Composite: composite.Score(sub, profile),
			Metrics:   metrics,
		})
	}

	var prevTeams map[int]domain.SnapshotTeam
	if data.previous != nil {
		prevTeams = data.previous.ByRoster()
	}
	ranked := antigaming.Apply(inputs, prevTeams)

	signal := quality.signal()
	records := buildRecords(facts, inputs, ranked, signal)

	constrained := 0
	for i := range records {
		records[i].Scores = subByRoster[records[i].RosterID]
		if records[i].Constrained {
			constrained++
		}
	}
	if constrained > 0 {
		telemetry.ConstrainedTeams.Add(float64(constrained))
	}

	// The batched snapshot write is the run's only durable side effect;
	// a cancelled context skips it rather than persisting a partial week.
	if err := ctx.Err(); err != nil {
		telemetry.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("run cancelled before snapshot write: %w", err)
	}
	snap := buildSnapshot(league, start, facts, records)
	for i := range snap.Teams {
		snap.Teams[i].Scores = subByRoster[snap.Teams[i].RosterID]
		snap.Teams[i].Metrics = metricsByRoster[snap.Teams[i].RosterID]
	}
	if err := r.snapshots.Upsert(ctx, snap); err != nil {
		telemetry.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("persist snapshot for %s week %d: %w", leagueID, league.CurrentWeek, err)
	}

	telemetry.RunsTotal.WithLabelValues("ok").Inc()
	telemetry.RunDuration.Observe(r.now().Sub(start).Seconds())
	log.Info().
		Str("class", class.Key()).
		Int("week", league.CurrentWeek).
		Int("teams", len(records)).
		Int("constrained", constrained).
		Str("coverage", string(signal.Coverage)).
		Msg("ranking run complete")

	return &RunResult{
		RunID:    runID,
		LeagueID: leagueID,
		Season:   league.Season,
		Week:     league.CurrentWeek,
		Phase:    phase,
		Format:   format,
		Class:    class.Key(),
		Quality:  signal,
		Records:  records,
	}, nil
}

// batchWorkers bounds how many leagues rank concurrently. Leagues are
// fully independent units, so the pool is plain fan-out.
const batchWorkers = 4

// RunBatch ranks many leagues through a bounded worker pool. One league's
// failure is logged and skipped, never aborting the rest; results come back
// in input order. A cancelled context stops scheduling new leagues.
func (r *Runner) RunBatch(ctx context.Context, leagueIDs []string) []*RunResult {
	slots := make([]*RunResult, len(leagueIDs))
	sem := make(chan struct{}, batchWorkers)
	var wg sync.WaitGroup

	for i, id := range leagueIDs {
		if ctx.Err() != nil {
			r.log.Warn().Int("remaining", len(leagueIDs)-i).Msg("batch cancelled")
			break
		}
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := r.RunLeague(ctx, id)
			if err != nil {
				r.log.Error().Err(err).Str("league", id).Msg("league run failed, continuing batch")
				return
			}
			slots[i] = res
		}(i, id)
	}
	wg.Wait()

	out := make([]*RunResult, 0, len(leagueIDs))
	for _, res := range slots {
		if res != nil {
			out = append(out, res)
		}
	}
	return out
}

// fetchAll runs every optional fetch concurrently. Failures degrade the
// quality signal and leave neutral zero values; nothing here aborts.
func (r *Runner) fetchAll(ctx context.Context, league *providers.League, rosters []providers.Roster, phase domain.Phase, quality *qualityTracker, log zerolog.Logger) *fetched {
	data := &fetched{}

	seen := make(map[string]bool)
	var playerIDs []string
	for _, ro := range rosters {
		for _, id := range ro.PlayerIDs {
			if !seen[id] {
				seen[id] = true
				playerIDs = append(playerIDs, id)
			}
		}
	}

	var wg sync.WaitGroup

	fetch := func(feed string, fn func(ctx context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := fn(ctx)
			telemetry.FetchDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
			if err != nil {
				quality.degrade(feed)
				log.Warn().Err(err).Str("feed", feed).Msg("feed unavailable, degrading to neutral inputs")
			}
		}()
	}

	fetch(feedValuation, func(ctx context.Context) error {
		v, err := r.bundle.Valuation.Values(ctx, playerIDs)
		if err != nil {
			return err
		}
		data.values = v
		return nil
	})
	fetch(feedTrades, func(ctx context.Context) error {
		t, err := r.bundle.Trades.Trades(ctx, league.ID)
		if err != nil {
			return err
		}
		data.trades = t
		return nil
	})
	fetch(feedInjuries, func(ctx context.Context) error {
		inj, err := r.bundle.Injuries.Injuries(ctx)
		if err != nil {
			return err
		}
		data.injuries = inj
		return nil
	})
	fetch(feedDemand, func(ctx context.Context) error {
		d, err := r.bundle.Demand.DemandIndex(ctx, league.ID)
		if err != nil {
			return err
		}
		data.demand = d
		return nil
	})

	// Played weeks feed expected wins and weekly consistency. Missing
	// individual weeks are skipped; a fully empty history degrades.
	if league.CurrentWeek > 1 {
		fetch(feedScoreboard, func(ctx context.Context) error {
			boards := make(map[int][]providers.TeamPoints)
			for week := 1; week < league.CurrentWeek; week++ {
				board, err := r.bundle.League.Scoreboard(ctx, league.ID, week)
				if err != nil || len(board) == 0 {
					continue
				}
				boards[week] = board
			}
			if len(boards) == 0 {
				return errors.New("no played weeks available")
			}
			data.boards = boards
			return nil
		})
	}

	if phase == domain.PhasePostSeason {
		fetch(feedBracket, func(ctx context.Context) error {
			b, err := r.bundle.League.Bracket(ctx, league.ID)
			if err != nil {
				return err
			}
			data.bracket = b
			return nil
		})
	}

	// Last week's snapshot anchors the anti-gaming pass. Absence is a
	// normal cold start, not a degradation.
	wg.Add(1)
	go func() {
		defer wg.Done()
		prev, err := r.snapshots.Get(ctx, league.ID, league.Season, league.CurrentWeek-1)
		switch {
		case err == nil:
			data.previous = prev
		case errors.Is(err, persistence.ErrNotFound):
		default:
			log.Warn().Err(err).Msg("previous snapshot unavailable, ranking without anti-gaming lookback")
		}
	}()

	wg.Wait()
	return data
}

// resolveParams loads the last fully-applied learned parameters for the
// class, falling back to the built-in defaults.
func (r *Runner) resolveParams(ctx context.Context, class domain.LeagueClass, log zerolog.Logger) domain.LearnedParams {
	applied, err := r.params.LatestApplied(ctx, class.Key())
	switch {
	case err == nil:
		return *applied
	case errors.Is(err, persistence.ErrNotFound):
	default:
		log.Warn().Err(err).Str("class", class.Key()).Msg("learned params unavailable, using defaults")
	}
	return domain.DefaultLearnedParams(class)
}

// assembleFacts joins rosters with every fetched feed into the calculator's
// input bundles. Missing feed entries stay at neutral zero values.
func assembleFacts(league *providers.League, rosters []providers.Roster, data *fetched) []scores.TeamFacts {
	credits := make(map[int]float64, len(rosters))
	weeklyPoints := make(map[int][]float64, len(rosters))
	if len(data.boards) > 0 {
		weeks := make([]int, 0, len(data.boards))
		for w := range data.boards {
			weeks = append(weeks, w)
		}
		sort.Ints(weeks)
		for _, w := range weeks {
			board := data.boards[w]
			for id, credit := range providers.AllPlayCredits(board) {
				credits[id] += credit
			}
			for _, tp := range board {
				weeklyPoints[tp.RosterID] = append(weeklyPoints[tp.RosterID], tp.Points)
			}
		}
	}

	premiums := make(map[int][]float64)
	for _, t := range data.trades {
		if t.ValueGiven <= 0 {
			continue
		}
		premiums[t.RosterID] = append(premiums[t.RosterID], (t.ValueReceived-t.ValueGiven)/t.ValueGiven)
	}

	finishes := make(map[int]scores.PlayoffResult, len(data.bracket))
	for _, b := range data.bracket {
		finishes[b.RosterID] = playoffResult(b)
	}

	var totalPA float64
	for _, ro := range rosters {
		totalPA += ro.PointsAgainst
	}
	meanPA := totalPA / float64(len(rosters))

	facts := make([]scores.TeamFacts, 0, len(rosters))
	for _, ro := range rosters {
		starters := make(map[string]bool, len(ro.StarterIDs))
		for _, id := range ro.StarterIDs {
			starters[id] = true
		}

		players := make([]scores.PlayerFact, 0, len(ro.PlayerIDs))
		for _, id := range ro.PlayerIDs {
			v := data.values[id]
			pf := scores.PlayerFact{
				PlayerID:       id,
				Name:           v.Name,
				Position:       v.Position,
				Age:            v.Age,
				DynastyValue:   v.DynastyValue,
				RedraftValue:   v.RedraftValue,
				Starter:        starters[id],
				Prospect:       v.Prospect,
				ProjectedRound: v.ProjectedRound,
			}
			if rep, ok := data.injuries[id]; ok {
				pf.Injury = &scores.InjuryFact{
					Status:     rep.Status,
					Type:       rep.Type,
					ReportedAt: rep.ReportedAt,
				}
			}
			players = append(players, pf)
		}

		sos := 0.0
		if meanPA > 0 {
			sos = (ro.PointsAgainst - meanPA) / meanPA
		}

		facts = append(facts, scores.TeamFacts{
			RosterID:         ro.RosterID,
			OwnerID:          ro.OwnerID,
			TeamName:         ro.TeamName,
			OwnerName:        ro.OwnerName,
			Wins:             ro.Wins,
			Losses:           ro.Losses,
			Ties:             ro.Ties,
			WeeklyPoints:     weeklyPoints[ro.RosterID],
			PointsAgainst:    ro.PointsAgainst,
			ScheduleStrength: sos,
			Playoff:          finishes[ro.RosterID],
			Players:          players,
			ExpectedWins:     credits[ro.RosterID],
			TradePremiums:    premiums[ro.RosterID],
		})
	}
	return facts
}

func playoffResult(b providers.BracketFinish) scores.PlayoffResult {
	switch {
	case b.Placement == 1:
		return scores.PlayoffChampion
	case b.Placement == 2:
		return scores.PlayoffRunnerUp
	case b.Placement > 0 && b.Placement <= 4:
		return scores.PlayoffTop4
	case b.Placement > 0 && b.Placement <= 6:
		return scores.PlayoffTop6
	case b.Qualified:
		return scores.PlayoffQualified
	default:
		return scores.PlayoffMissed
	}
}

// buildRecords merges scoring, composite, and anti-gaming outputs into the
// run's record list, ordered by final rank.
func buildRecords(facts []scores.TeamFacts, inputs []antigaming.TeamInput, ranked []antigaming.Result, signal domain.QualitySignal) []domain.TeamScoreRecord {
	factByRoster := make(map[int]scores.TeamFacts, len(facts))
	for _, f := range facts {
		factByRoster[f.RosterID] = f
	}
	compByRoster := make(map[int]int, len(inputs))
	for _, in := range inputs {
		compByRoster[in.RosterID] = in.Composite
	}

	records := make([]domain.TeamScoreRecord, 0, len(ranked))
	for i, res := range ranked {
		f := factByRoster[res.RosterID]
		rec := domain.TeamScoreRecord{
			RosterID:    res.RosterID,
			OwnerID:     f.OwnerID,
			DisplayName: domain.ResolveDisplayName(f.TeamName, f.OwnerName, f.RosterID),
			Composite:   compByRoster[res.RosterID],
			Rank:        res.Rank,
			PrevRank:    res.PrevRank,
			Metrics:     inputs[i].Metrics,
			Constrained: res.Constrained,
			Checks:      res.Checks,
			Quality:     signal,
		}
		if res.PrevRank != nil {
			rec.RankDelta = *res.PrevRank - res.Rank
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(a, b int) bool { return records[a].Rank < records[b].Rank })
	return records
}

// buildSnapshot shapes the run into its durable form. Sub-scores and
// metrics are filled in by the caller, which still has them keyed.
func buildSnapshot(league *providers.League, at time.Time, facts []scores.TeamFacts, records []domain.TeamScoreRecord) *domain.Snapshot {
	luckByRoster := make(map[int]float64, len(facts))
	expectedByRoster := make(map[int]float64, len(facts))
	for _, f := range facts {
		luckByRoster[f.RosterID] = f.ActualWins() - f.ExpectedWins
		expectedByRoster[f.RosterID] = f.ExpectedWins
	}

	snap := &domain.Snapshot{
		LeagueID:  league.ID,
		Season:    league.Season,
		Week:      league.CurrentWeek,
		CreatedAt: at,
	}
	for _, rec := range records {
		snap.Teams = append(snap.Teams, domain.SnapshotTeam{
			RosterID:     rec.RosterID,
			Rank:         rec.Rank,
			Composite:    rec.Composite,
			ExpectedWins: expectedByRoster[rec.RosterID],
			LuckDelta:    luckByRoster[rec.RosterID],
		})
	}
	return snap
}
