package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/persistence"
)

type backtestsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewBacktestStore creates a PostgreSQL-backed backtest result store.
func NewBacktestStore(db *sqlx.DB, timeout time.Duration) persistence.BacktestStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &backtestsRepo{db: db, timeout: timeout}
}

type backtestRow struct {
	LeagueID      string    `db:"league_id"`
	Season        int       `db:"season"`
	WeekEvaluated int       `db:"week_evaluated"`
	Target        string    `db:"target_type"`
	HorizonWeeks  int       `db:"horizon_weeks"`
	SegmentKey    string    `db:"segment_key"`
	TeamCount     int       `db:"team_count"`
	Brier         float64   `db:"brier"`
	ECE           float64   `db:"ece"`
	NDCG          float64   `db:"ndcg"`
	Spearman      float64   `db:"spearman"`
	Teams         []byte    `db:"teams"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r *backtestsRepo) Record(ctx context.Context, result *domain.BacktestResult) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	teamsJSON, err := json.Marshal(result.Teams)
	if err != nil {
		return fmt.Errorf("marshal backtest teams: %w", err)
	}

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO backtest_results
			(league_id, season, week_evaluated, target_type, horizon_weeks, segment_key,
			 team_count, brier, ece, ndcg, spearman, teams, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (league_id, season, week_evaluated, target_type) DO UPDATE SET
			horizon_weeks = EXCLUDED.horizon_weeks,
			segment_key = EXCLUDED.segment_key,
			team_count = EXCLUDED.team_count,
			brier = EXCLUDED.brier,
			ece = EXCLUDED.ece,
			ndcg = EXCLUDED.ndcg,
			spearman = EXCLUDED.spearman,
			teams = EXCLUDED.teams,
			created_at = EXCLUDED.created_at`

	if _, err := r.db.ExecContext(ctx, query,
		result.LeagueID, result.Season, result.WeekEvaluated, string(result.Target),
		result.HorizonWeeks, result.SegmentKey, result.TeamCount,
		result.Brier, result.ECE, result.NDCG, result.Spearman,
		teamsJSON, createdAt); err != nil {
		return fmt.Errorf("upsert backtest result: %w", err)
	}
	return nil
}

func (r *backtestsRepo) RecentBySegment(ctx context.Context, segmentKey string, limit int) ([]*domain.BacktestResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT league_id, season, week_evaluated, target_type, horizon_weeks, segment_key,
		       team_count, brier, ece, ndcg, spearman, teams, created_at
		FROM backtest_results
		WHERE segment_key = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var rows []backtestRow
	if err := r.db.SelectContext(ctx, &rows, query, segmentKey, limit); err != nil {
		return nil, fmt.Errorf("select backtests for segment %s: %w", segmentKey, err)
	}

	out := make([]*domain.BacktestResult, 0, len(rows))
	for _, row := range rows {
		result := &domain.BacktestResult{
			LeagueID:      row.LeagueID,
			Season:        row.Season,
			WeekEvaluated: row.WeekEvaluated,
			Target:        domain.TargetType(row.Target),
			HorizonWeeks:  row.HorizonWeeks,
			SegmentKey:    row.SegmentKey,
			TeamCount:     row.TeamCount,
			Brier:         row.Brier,
			ECE:           row.ECE,
			NDCG:          row.NDCG,
			Spearman:      row.Spearman,
			CreatedAt:     row.CreatedAt,
		}
		if len(row.Teams) > 0 {
			if err := json.Unmarshal(row.Teams, &result.Teams); err != nil {
				return nil, fmt.Errorf("unmarshal backtest teams: %w", err)
			}
		}
		out = append(out, result)
	}
	return out, nil
}
