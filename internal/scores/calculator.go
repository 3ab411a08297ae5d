package scores

import (
	"math"
	"time"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/stats"
)

// Config fixes the league-level context a Calculator scores under.
type Config struct {
	Phase  domain.Phase
	Format domain.Format
	Params domain.LearnedParams
	Demand map[string]DemandScore
	Now    time.Time
}

// Calculator computes the six sub-scores for every team in a league. All
// league-wide percentile populations are built once at construction so each
// team's scoring is a deterministic pure pass.
type Calculator struct {
	cfg   Config
	teams []TeamFacts

	profiles      map[int]InjuryProfile
	starterValues []float64
	benchValues   []float64
	luckDeltas    []float64
	marketValues  []float64
	tradeAverages []float64
	processScores []float64

	starterByRoster map[int]float64
	marketByRoster  map[int]float64
	tradeByRoster   map[int]float64
	luckByRoster    map[int]float64
}

// NewCalculator precomputes league populations for the given teams.
func NewCalculator(cfg Config, teams []TeamFacts) *Calculator {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	c := &Calculator{
		cfg:             cfg,
		teams:           teams,
		profiles:        make(map[int]InjuryProfile, len(teams)),
		starterByRoster: make(map[int]float64, len(teams)),
		marketByRoster:  make(map[int]float64, len(teams)),
		tradeByRoster:   make(map[int]float64, len(teams)),
		luckByRoster:    make(map[int]float64, len(teams)),
	}

	for _, f := range teams {
		c.profiles[f.RosterID] = BuildInjuryProfile(f.Players, cfg.Format, cfg.Now)

		sv := rosterValue(f.Players, cfg.Format, true)
		bv := rosterValue(f.Players, cfg.Format, false)
		c.starterValues = append(c.starterValues, sv)
		c.benchValues = append(c.benchValues, bv)
		c.starterByRoster[f.RosterID] = sv

		luck := f.ActualWins() - f.ExpectedWins
		c.luckDeltas = append(c.luckDeltas, luck)
		c.luckByRoster[f.RosterID] = luck

		mv := c.adjustedMarketValue(f)
		c.marketValues = append(c.marketValues, mv)
		c.marketByRoster[f.RosterID] = mv

		avgPremium := stats.Mean(f.TradePremiums)
		c.tradeAverages = append(c.tradeAverages, avgPremium)
		c.tradeByRoster[f.RosterID] = avgPremium

		c.processScores = append(c.processScores, processConsistency(f.WeeklyPoints))
	}
	return c
}

// Score returns the six sub-scores and the raw metric bundle for one team.
// The team must be one of the teams the Calculator was built with.
func (c *Calculator) Score(f TeamFacts) (domain.SubScores, domain.RawMetrics) {
	prof := c.profiles[f.RosterID]

	sub := domain.SubScores{
		Win:           c.winScore(f),
		Power:         c.powerScore(f, prof),
		Luck:          c.luckScore(f),
		Market:        c.marketScore(f),
		Skill:         c.skillScore(f),
		FutureCapital: c.futureCapitalScore(f),
	}

	metrics := domain.RawMetrics{
		StarterValuePct:        stats.PercentileRank(c.starterByRoster[f.RosterID], c.starterValues),
		ExpectedWins:           f.ExpectedWins,
		InjuryHealthRatio:      prof.PowerHealthRatio,
		TradeEfficiencyPremium: c.tradeByRoster[f.RosterID],
	}
	return sub, metrics
}

// Profile exposes the team's injury profile for callers that surface it.
func (c *Calculator) Profile(rosterID int) InjuryProfile {
	return c.profiles[rosterID]
}

func rosterValue(players []PlayerFact, format domain.Format, starters bool) float64 {
	var sum float64
	for _, p := range players {
		if p.Starter == starters {
			sum += p.Value(format)
		}
	}
	return sum
}

// processConsistency inverts the coefficient of variation of weekly points:
// steadier scoring maps closer to 1.
func processConsistency(weekly []float64) float64 {
	return 1.0 / (1.0 + stats.CoefficientOfVariation(weekly))
}

func toScore(unit float64) int {
	return int(math.Round(stats.Clamp01(unit) * 100))
}
