// Package persistence defines the storage contracts the ranking engine
// depends on: weekly snapshots, accumulated backtest results, and applied
// learned parameters. Implementations live in subpackages; the engine only
// sees these interfaces.
package persistence

import (
	"context"
	"errors"

	"github.com/rosterwire/leaguerank/internal/domain"
)

// ErrNotFound is returned when a point lookup has no row. Callers treat it
// as a normal condition (cold start, first run of a season).
var ErrNotFound = errors.New("persistence: not found")

// SnapshotStore persists per-league weekly ranking snapshots. Upserts are
// atomic per league-run: the batched write is the run's only durable side
// effect.
type SnapshotStore interface {
	// Get returns the snapshot for one league-week, or ErrNotFound.
	Get(ctx context.Context, leagueID string, season, week int) (*domain.Snapshot, error)

	// Upsert writes a full league-week of team rows in one transaction,
	// replacing any previous write for the same key.
	Upsert(ctx context.Context, snap *domain.Snapshot) error

	// Season returns all snapshots for a league season ordered by week,
	// for backtest replay and trend rendering.
	Season(ctx context.Context, leagueID string, season int) ([]*domain.Snapshot, error)
}

// BacktestStore accumulates evaluation results, the parameter learner's
// evidence base.
type BacktestStore interface {
	// Record inserts or replaces one result keyed by
	// (league, season, weekEvaluated, target).
	Record(ctx context.Context, result *domain.BacktestResult) error

	// RecentBySegment returns up to limit most recent results for a
	// league-class segment key, newest first.
	RecentBySegment(ctx context.Context, segmentKey string, limit int) ([]*domain.BacktestResult, error)
}

// ParamsStore persists applied learned-parameter records per league class.
// Writes append; reads always see the last fully applied record, never a
// partial one.
type ParamsStore interface {
	// LatestApplied returns the most recent applied record for a class,
	// or ErrNotFound when the class has never been tuned.
	LatestApplied(ctx context.Context, classKey string) (*domain.LearnedParams, error)

	// Apply appends a new applied record for the class.
	Apply(ctx context.Context, params *domain.LearnedParams) error
}
