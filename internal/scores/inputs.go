package scores

import (
	"time"

	"github.com/rosterwire/leaguerank/internal/domain"
)

// InjuryFact is one player's current injury designation as reported by the
// injury feed. A nil InjuryFact means healthy.
type InjuryFact struct {
	Status     string
	Type       string
	ReportedAt time.Time
}

// PlayerFact carries everything the calculators need about one rostered
// player. Values come from the valuation provider; zero values mean the
// provider had no entry for the player.
type PlayerFact struct {
	PlayerID       string
	Name           string
	Position       string
	Age            int
	DynastyValue   float64
	RedraftValue   float64
	Starter        bool
	Prospect       bool
	ProjectedRound int
	Injury         *InjuryFact
}

// Value returns the player's valuation under the league format.
func (p PlayerFact) Value(format domain.Format) float64 {
	if format == domain.FormatDynasty {
		return p.DynastyValue
	}
	return p.RedraftValue
}

// PlayoffResult is a team's bracket outcome, known only in the post-season
// phase.
type PlayoffResult int

const (
	PlayoffMissed PlayoffResult = iota
	PlayoffQualified
	PlayoffTop6
	PlayoffTop4
	PlayoffRunnerUp
	PlayoffChampion
)

// DemandScore is one position's market heat from the league demand index.
// 50 is neutral; samples under 30 are low-confidence and treated as neutral.
type DemandScore struct {
	Score  float64
	Sample int
}

// TeamFacts bundles the raw league/roster/valuation/trade facts for one
// team. The pipeline assembles one bundle per roster before scoring; the
// calculators never fetch anything themselves.
type TeamFacts struct {
	RosterID  int
	OwnerID   string
	TeamName  string
	OwnerName string

	Wins   int
	Losses int
	Ties   int

	WeeklyPoints     []float64
	PointsAgainst    float64
	ScheduleStrength float64

	Playoff PlayoffResult
	Players []PlayerFact

	// ExpectedWins is the accumulated all-play credit computed by the
	// pipeline from weekly scoreboards.
	ExpectedWins float64

	// TradePremiums holds value-received minus value-given, as a fraction
	// of value given, for each historical trade.
	TradePremiums []float64
}

// GamesPlayed returns the count of decided games including ties.
func (f TeamFacts) GamesPlayed() int {
	return f.Wins + f.Losses + f.Ties
}

// ActualWins counts ties as half a win.
func (f TeamFacts) ActualWins() float64 {
	return float64(f.Wins) + 0.5*float64(f.Ties)
}

// WinPct returns the team's winning percentage, 0 before any games.
func (f TeamFacts) WinPct() float64 {
	g := f.GamesPlayed()
	if g == 0 {
		return 0
	}
	return f.ActualWins() / float64(g)
}
