// Package providers declares the upstream data contracts the ranking
// engine consumes. The providers themselves are owned by other subsystems;
// the engine programs against these interfaces and degrades gracefully
// when any of them is partial or unavailable.
package providers

import (
	"context"
	"time"
)

// League is the metadata needed to classify and phase a league.
type League struct {
	ID           string
	Name         string
	Season       int
	CurrentWeek  int
	Status       string
	TeamCount    int
	Dynasty      bool
	Superflex    bool
	PlayoffTeams int
	RosterSlots  []string
}

// Roster is one team's record and player list.
type Roster struct {
	RosterID      int
	OwnerID       string
	TeamName      string
	OwnerName     string
	Wins          int
	Losses        int
	Ties          int
	PointsFor     float64
	PointsAgainst float64
	PlayerIDs     []string
	StarterIDs    []string
}

// TeamPoints is one roster's scoring total for one week.
type TeamPoints struct {
	RosterID int
	Points   float64
}

// BracketFinish describes one team's playoff outcome.
type BracketFinish struct {
	RosterID  int
	Placement int
	Qualified bool
}

// LeagueProvider serves league metadata, rosters, weekly scoreboards, and
// the playoff bracket when one exists.
type LeagueProvider interface {
	League(ctx context.Context, leagueID string) (*League, error)
	Rosters(ctx context.Context, leagueID string) ([]Roster, error)
	Scoreboard(ctx context.Context, leagueID string, week int) ([]TeamPoints, error)
	Bracket(ctx context.Context, leagueID string) ([]BracketFinish, error)
}

// PlayerValue is one player's market valuation. Prospect fields only carry
// meaning in dynasty formats.
type PlayerValue struct {
	PlayerID       string
	Name           string
	Position       string
	Age            int
	DynastyValue   float64
	RedraftValue   float64
	Prospect       bool
	ProjectedRound int
	FetchedAt      time.Time
}

// ValuationProvider maps player ids to valuations. Missing ids are simply
// absent from the result, not errors.
type ValuationProvider interface {
	Values(ctx context.Context, playerIDs []string) (map[string]PlayerValue, error)
}

// Trade is one historical league trade with its value exchange.
type Trade struct {
	TradeID       string
	RosterID      int
	Counterparty  int
	ValueGiven    float64
	ValueReceived float64
	CompletedAt   time.Time
}

// TradeProvider serves a league's trade history.
type TradeProvider interface {
	Trades(ctx context.Context, leagueID string) ([]Trade, error)
}

// InjuryReport is one player's current designation from the injury feed.
type InjuryReport struct {
	PlayerID   string
	Status     string
	Type       string
	ReportedAt time.Time
}

// InjuryProvider serves current injury designations. Best effort: players
// missing from the result are healthy.
type InjuryProvider interface {
	Injuries(ctx context.Context) (map[string]InjuryReport, error)
}

// PositionDemand is one position's market heat in a league's trade market.
type PositionDemand struct {
	Position string
	Score    float64
	Sample   int
}

// DemandProvider serves the league demand index.
type DemandProvider interface {
	DemandIndex(ctx context.Context, leagueID string) (map[string]PositionDemand, error)
}

// Bundle groups every upstream provider a ranking run needs.
type Bundle struct {
	League    LeagueProvider
	Valuation ValuationProvider
	Trades    TradeProvider
	Injuries  InjuryProvider
	Demand    DemandProvider
}
