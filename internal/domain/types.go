package domain

import "time"

// SubScores holds the six independent performance signals, each 0-100.
type SubScores struct {
	Win           int `json:"win"`
	Power         int `json:"power"`
	Luck          int `json:"luck"`
	Market        int `json:"market"`
	Skill         int `json:"skill"`
	FutureCapital int `json:"future_capital"`
}

// RawMetrics is the per-team metric bundle carried alongside scores. The
// anti-gaming solver reads it to decide whether a rank climb is evidenced,
// and backtests replay it from snapshots.
type RawMetrics struct {
	StarterValuePct        float64 `json:"starter_value_pct"`
	ExpectedWins           float64 `json:"expected_wins"`
	InjuryHealthRatio      float64 `json:"injury_health_ratio"`
	TradeEfficiencyPremium float64 `json:"trade_efficiency_premium"`
}

// Justification records one anti-gaming evidence check for a team: did this
// metric move enough since last week to justify a rank climb.
type Justification struct {
	Metric    string  `json:"metric"`
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	Delta     float64 `json:"delta"`
	Threshold float64 `json:"threshold"`
	Passed    bool    `json:"passed"`
}

// Confidence grades how much the engine trusts a team's score given the
// upstream data that was actually available for the run.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Coverage grades how complete the upstream inputs were.
type Coverage string

const (
	CoverageFull    Coverage = "FULL"
	CoveragePartial Coverage = "PARTIAL"
	CoverageMinimal Coverage = "MINIMAL"
)

// QualitySignal always accompanies a score so degraded runs are
// distinguishable from fully-confident ones.
type QualitySignal struct {
	Confidence Confidence `json:"confidence"`
	Coverage   Coverage   `json:"coverage"`
	Caveats    []string   `json:"caveats,omitempty"`
}

// TeamScoreRecord is the per-team output of one ranking run. Records are
// created fresh each run and never mutated afterward; next week's run
// supersedes them.
type TeamScoreRecord struct {
	RosterID    int           `json:"roster_id"`
	OwnerID     string        `json:"owner_id"`
	DisplayName string        `json:"display_name"`
	Scores      SubScores     `json:"scores"`
	Composite   int           `json:"composite"`
	Rank        int           `json:"rank"`
	PrevRank    *int          `json:"prev_rank,omitempty"`
	RankDelta   int           `json:"rank_delta"`
	Metrics     RawMetrics    `json:"metrics"`
	Constrained bool          `json:"constrained"`
	Checks      []Justification `json:"checks,omitempty"`
	Quality     QualitySignal `json:"quality"`
}

// SnapshotTeam is the persisted per-roster slice of a weekly snapshot.
// Sub-scores are stored so backtests can recompute composites under
// candidate parameters without refetching upstream data.
type SnapshotTeam struct {
	RosterID     int        `json:"roster_id" db:"roster_id"`
	Rank         int        `json:"rank" db:"rank"`
	Composite    int        `json:"composite" db:"composite"`
	ExpectedWins float64    `json:"expected_wins" db:"expected_wins"`
	LuckDelta    float64    `json:"luck_delta" db:"luck_delta"`
	Scores       SubScores  `json:"scores"`
	Metrics      RawMetrics `json:"metrics"`
}

// Snapshot is one league-week of persisted ranking results. Write-once per
// (league, season, week) key, read many times by the anti-gaming lookback
// and backtest replay.
type Snapshot struct {
	LeagueID  string         `json:"league_id"`
	Season    int            `json:"season"`
	Week      int            `json:"week"`
	CreatedAt time.Time      `json:"created_at"`
	Teams     []SnapshotTeam `json:"teams"`
}

// ByRoster indexes the snapshot's teams by roster id for point lookups.
func (s *Snapshot) ByRoster() map[int]SnapshotTeam {
	m := make(map[int]SnapshotTeam, len(s.Teams))
	for _, t := range s.Teams {
		m[t.RosterID] = t
	}
	return m
}

// TargetType selects what a backtest grades the composite against.
type TargetType string

const (
	TargetWinPct3W           TargetType = "win_pct_3w"
	TargetPlayoffQual        TargetType = "playoff_qual"
	TargetChampionshipFinish TargetType = "championship_finish"
)

// TeamPrediction pairs one team's predicted and actual outcome for a
// backtest evaluation.
type TeamPrediction struct {
	RosterID  int     `json:"roster_id"`
	Predicted float64 `json:"predicted"`
	Actual    float64 `json:"actual"`
	Rank      int     `json:"rank"`
}

// BacktestResult is one evaluation of historical prediction quality,
// accumulated over many runs to build the parameter learner's evidence base.
type BacktestResult struct {
	LeagueID      string           `json:"league_id"`
	Season        int              `json:"season"`
	WeekEvaluated int              `json:"week_evaluated"`
	Target        TargetType       `json:"target"`
	HorizonWeeks  int              `json:"horizon_weeks"`
	SegmentKey    string           `json:"segment_key"`
	TeamCount     int              `json:"team_count"`
	Brier         float64          `json:"brier"`
	ECE           float64          `json:"ece"`
	NDCG          float64          `json:"ndcg"`
	Spearman      float64          `json:"spearman"`
	Teams         []TeamPrediction `json:"teams"`
	CreatedAt     time.Time        `json:"created_at"`
}
