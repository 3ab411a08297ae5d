package scores

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterwire/leaguerank/internal/domain"
)

func testConfig(format domain.Format, phase domain.Phase) Config {
	return Config{
		Phase:  phase,
		Format: format,
		Params: domain.DefaultLearnedParams(domain.LeagueClass{Format: format, Phase: phase}),
		Now:    time.Date(2025, 11, 12, 0, 0, 0, 0, time.UTC),
	}
}

func rosterOf(rosterID int, starterValue, benchValue float64) TeamFacts {
	return TeamFacts{
		RosterID: rosterID,
		Players: []PlayerFact{
			{PlayerID: "s", DynastyValue: starterValue, RedraftValue: starterValue, Starter: true},
			{PlayerID: "b", DynastyValue: benchValue, RedraftValue: benchValue},
		},
	}
}

func TestWinScore_RegularSeason(t *testing.T) {
	c := NewCalculator(testConfig(domain.FormatRedraft, domain.PhaseInSeason), nil)

	f := TeamFacts{Wins: 6, Losses: 4, ScheduleStrength: 0.20}
	// SOS capped at +0.05: 0.60 + 0.05 = 0.65.
	assert.Equal(t, 65, c.winScore(f))

	f.ScheduleStrength = -0.30
	assert.Equal(t, 55, c.winScore(f))
}

func TestWinScore_PostSeasonBlend(t *testing.T) {
	c := NewCalculator(testConfig(domain.FormatRedraft, domain.PhasePostSeason), nil)

	champ := TeamFacts{Wins: 10, Losses: 4, Playoff: PlayoffChampion}
	// 0.45*(10/14) + 0.55*1.0
	want := int(math.Round((0.45*10.0/14.0 + 0.55) * 100))
	assert.Equal(t, want, c.winScore(champ))

	missed := TeamFacts{Wins: 10, Losses: 4, Playoff: PlayoffMissed}
	wantMissed := int(math.Round((0.45*10.0/14.0 + 0.55*0.30) * 100))
	assert.Equal(t, wantMissed, c.winScore(missed))
	assert.Greater(t, c.winScore(champ), c.winScore(missed))
}

func TestPowerScore_HealthAndRisk(t *testing.T) {
	teams := []TeamFacts{
		rosterOf(1, 100, 50),
		rosterOf(2, 200, 80),
		rosterOf(3, 300, 120),
		rosterOf(4, 400, 160),
		rosterOf(5, 500, 200),
		rosterOf(6, 600, 240),
	}
	cfg := testConfig(domain.FormatDynasty, domain.PhaseInSeason)
	c := NewCalculator(cfg, teams)

	top := c.powerScore(teams[5], c.Profile(6))
	bottom := c.powerScore(teams[0], c.Profile(1))
	assert.Greater(t, top, bottom)

	// An identical roster with its starter on IR scores lower.
	hurt := teams[5]
	hurt.Players = []PlayerFact{
		{PlayerID: "s", DynastyValue: 600, Starter: true, Injury: &InjuryFact{Status: "IR", ReportedAt: cfg.Now}},
		{PlayerID: "b", DynastyValue: 240},
	}
	teamsHurt := append(append([]TeamFacts{}, teams[:5]...), hurt)
	cHurt := NewCalculator(cfg, teamsHurt)
	assert.Less(t, cHurt.powerScore(hurt, cHurt.Profile(6)), top)
}

func TestLuckScore_RewardsBankedWins(t *testing.T) {
	teams := []TeamFacts{
		{RosterID: 1, Wins: 8, Losses: 2, ExpectedWins: 4.0}, // lucky
		{RosterID: 2, Wins: 5, Losses: 5, ExpectedWins: 5.0},
		{RosterID: 3, Wins: 2, Losses: 8, ExpectedWins: 6.0}, // unlucky
		{RosterID: 4, Wins: 5, Losses: 5, ExpectedWins: 4.5},
		{RosterID: 5, Wins: 4, Losses: 6, ExpectedWins: 4.5},
		{RosterID: 6, Wins: 6, Losses: 4, ExpectedWins: 6.0},
	}
	c := NewCalculator(testConfig(domain.FormatRedraft, domain.PhaseInSeason), teams)

	assert.Equal(t, 100, c.luckScore(teams[0]))
	assert.Equal(t, 0, c.luckScore(teams[2]))
}

func TestMarketScore_AgeCurve(t *testing.T) {
	assert.InDelta(t, 1.12, ageCurve(26), 1e-9)
	assert.InDelta(t, 1.0, ageCurve(30), 1e-9)
	assert.InDelta(t, 0.88, ageCurve(35), 1e-9)
	assert.InDelta(t, 0.88, ageCurve(40), 1e-9)
	assert.Equal(t, 1.0, ageCurve(0))
}

func TestMarketScore_DemandMultiplier(t *testing.T) {
	cfg := testConfig(domain.FormatDynasty, domain.PhaseInSeason)
	cfg.Demand = map[string]DemandScore{
		"RB": {Score: 100, Sample: 50},
		"TE": {Score: 0, Sample: 50},
		"WR": {Score: 100, Sample: 10}, // thin sample, neutral
	}
	c := NewCalculator(cfg, nil)

	assert.InDelta(t, 1.15, c.demandMultiplier("RB"), 1e-9)
	assert.InDelta(t, 0.85, c.demandMultiplier("TE"), 1e-9)
	assert.InDelta(t, 1.0, c.demandMultiplier("WR"), 1e-9)
	assert.InDelta(t, 1.0, c.demandMultiplier("QB"), 1e-9)
}

func TestMarketScore_InjuryDiscountByFormat(t *testing.T) {
	now := time.Date(2025, 11, 12, 0, 0, 0, 0, time.UTC)
	hurt := TeamFacts{RosterID: 1, Players: []PlayerFact{
		{PlayerID: "x", DynastyValue: 100, RedraftValue: 100, Age: 26,
			Injury: &InjuryFact{Status: "IR", ReportedAt: now}},
	}}

	dyn := NewCalculator(testConfig(domain.FormatDynasty, domain.PhaseInSeason), []TeamFacts{hurt})
	red := NewCalculator(testConfig(domain.FormatRedraft, domain.PhaseInSeason), []TeamFacts{hurt})

	// Dynasty: 100*1.12(age)*1.0(demand)*(1-1.0*0.25); redraft skips the
	// age curve and discounts at 0.60.
	assert.InDelta(t, 100*1.12*0.75, dyn.adjustedMarketValue(hurt), 1e-9)
	assert.InDelta(t, 100*0.40, red.adjustedMarketValue(hurt), 1e-9)
}

func TestSkillScore_FormatWeighting(t *testing.T) {
	teams := []TeamFacts{
		{RosterID: 1, WeeklyPoints: []float64{100, 101, 99, 100}, TradePremiums: []float64{0.30, 0.25}},
		{RosterID: 2, WeeklyPoints: []float64{60, 140, 80, 120}, TradePremiums: []float64{-0.20}},
		{RosterID: 3, WeeklyPoints: []float64{90, 110, 95, 105}, TradePremiums: nil},
		{RosterID: 4, WeeklyPoints: []float64{100, 90, 110, 100}, TradePremiums: []float64{0.05}},
		{RosterID: 5, WeeklyPoints: []float64{70, 130, 75, 125}, TradePremiums: []float64{-0.10}},
		{RosterID: 6, WeeklyPoints: []float64{95, 105, 98, 102}, TradePremiums: []float64{0.10}},
	}
	c := NewCalculator(testConfig(domain.FormatDynasty, domain.PhaseInSeason), teams)

	best := c.skillScore(teams[0])
	worst := c.skillScore(teams[1])
	assert.Greater(t, best, worst)

	for _, f := range teams {
		s := c.skillScore(f)
		require.GreaterOrEqual(t, s, 0)
		require.LessOrEqual(t, s, 100)
	}
}

func TestFutureCapitalScore(t *testing.T) {
	team := TeamFacts{RosterID: 1, Players: []PlayerFact{
		{PlayerID: "p1", DynastyValue: 90, Prospect: true, ProjectedRound: 1},
		{PlayerID: "p2", DynastyValue: 20, Prospect: true, ProjectedRound: 3},
		{PlayerID: "vet", DynastyValue: 80},
	}}

	dyn := NewCalculator(testConfig(domain.FormatDynasty, domain.PhaseInSeason), []TeamFacts{team})
	// min(90,60)*0.5+15 + 20*0.5+4 = 45+14 = 59.
	assert.Equal(t, 59, dyn.futureCapitalScore(team))

	red := NewCalculator(testConfig(domain.FormatRedraft, domain.PhaseInSeason), []TeamFacts{team})
	assert.Equal(t, 0, red.futureCapitalScore(team))
}

func TestScore_AllWithinBounds(t *testing.T) {
	teams := []TeamFacts{
		rosterOf(1, 500, 100),
		rosterOf(2, 100, 400),
		{RosterID: 3},
	}
	teams[0].Wins, teams[0].ExpectedWins = 9, 5.5
	teams[1].Losses, teams[1].ExpectedWins = 9, 5.5
	c := NewCalculator(testConfig(domain.FormatDynasty, domain.PhaseInSeason), teams)

	for _, f := range teams {
		sub, metrics := c.Score(f)
		for name, v := range map[string]int{
			"win": sub.Win, "power": sub.Power, "luck": sub.Luck,
			"market": sub.Market, "skill": sub.Skill, "future": sub.FutureCapital,
		} {
			require.GreaterOrEqualf(t, v, 0, "%s below 0", name)
			require.LessOrEqualf(t, v, 100, "%s above 100", name)
		}
		require.GreaterOrEqual(t, metrics.StarterValuePct, 0.0)
		require.LessOrEqual(t, metrics.StarterValuePct, 1.0)
	}
}
