// Package postgres implements the persistence contracts on PostgreSQL via
// sqlx. Metric bundles and prediction lists travel as JSONB so the schema
// stays stable while the bundles evolve.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/persistence"
)

// DefaultTimeout bounds every repository call.
const DefaultTimeout = 5 * time.Second

type snapshotsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSnapshotStore creates a PostgreSQL-backed snapshot store.
func NewSnapshotStore(db *sqlx.DB, timeout time.Duration) persistence.SnapshotStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &snapshotsRepo{db: db, timeout: timeout}
}

type snapshotRow struct {
	RosterID     int       `db:"roster_id"`
	Rank         int       `db:"rank"`
	Composite    int       `db:"composite"`
	ExpectedWins float64   `db:"expected_wins"`
	LuckDelta    float64   `db:"luck_delta"`
	Scores       []byte    `db:"scores"`
	Metrics      []byte    `db:"metrics"`
	CreatedAt    time.Time `db:"created_at"`
	Week         int       `db:"week"`
}

func (r *snapshotsRepo) Get(ctx context.Context, leagueID string, season, week int) (*domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT roster_id, rank, composite, expected_wins, luck_delta, scores, metrics, created_at, week
		FROM league_snapshots
		WHERE league_id = $1 AND season = $2 AND week = $3
		ORDER BY rank`

	var rows []snapshotRow
	if err := r.db.SelectContext(ctx, &rows, query, leagueID, season, week); err != nil {
		return nil, fmt.Errorf("select snapshot %s/%d/w%d: %w", leagueID, season, week, err)
	}
	if len(rows) == 0 {
		return nil, persistence.ErrNotFound
	}
	return rowsToSnapshot(leagueID, season, week, rows)
}

func (r *snapshotsRepo) Upsert(ctx context.Context, snap *domain.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot upsert: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO league_snapshots
			(league_id, season, week, roster_id, rank, composite, expected_wins, luck_delta, scores, metrics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (league_id, season, week, roster_id) DO UPDATE SET
			rank = EXCLUDED.rank,
			composite = EXCLUDED.composite,
			expected_wins = EXCLUDED.expected_wins,
			luck_delta = EXCLUDED.luck_delta,
			scores = EXCLUDED.scores,
			metrics = EXCLUDED.metrics,
			created_at = EXCLUDED.created_at`

	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	for _, team := range snap.Teams {
		scoresJSON, err := json.Marshal(team.Scores)
		if err != nil {
			return fmt.Errorf("marshal scores for roster %d: %w", team.RosterID, err)
		}
		metricsJSON, err := json.Marshal(team.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics for roster %d: %w", team.RosterID, err)
		}
		if _, err := tx.ExecContext(ctx, query,
			snap.LeagueID, snap.Season, snap.Week,
			team.RosterID, team.Rank, team.Composite,
			team.ExpectedWins, team.LuckDelta,
			scoresJSON, metricsJSON, createdAt); err != nil {
			return fmt.Errorf("upsert snapshot row roster %d: %w", team.RosterID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot upsert: %w", err)
	}
	return nil
}

func (r *snapshotsRepo) Season(ctx context.Context, leagueID string, season int) ([]*domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT roster_id, rank, composite, expected_wins, luck_delta, scores, metrics, created_at, week
		FROM league_snapshots
		WHERE league_id = $1 AND season = $2
		ORDER BY week, rank`

	var rows []snapshotRow
	if err := r.db.SelectContext(ctx, &rows, query, leagueID, season); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select season %s/%d: %w", leagueID, season, err)
	}

	byWeek := make(map[int][]snapshotRow)
	var weeks []int
	for _, row := range rows {
		if _, seen := byWeek[row.Week]; !seen {
			weeks = append(weeks, row.Week)
		}
		byWeek[row.Week] = append(byWeek[row.Week], row)
	}

	out := make([]*domain.Snapshot, 0, len(weeks))
	for _, week := range weeks {
		snap, err := rowsToSnapshot(leagueID, season, week, byWeek[week])
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

func rowsToSnapshot(leagueID string, season, week int, rows []snapshotRow) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		LeagueID: leagueID,
		Season:   season,
		Week:     week,
		Teams:    make([]domain.SnapshotTeam, 0, len(rows)),
	}
	for _, row := range rows {
		team := domain.SnapshotTeam{
			RosterID:     row.RosterID,
			Rank:         row.Rank,
			Composite:    row.Composite,
			ExpectedWins: row.ExpectedWins,
			LuckDelta:    row.LuckDelta,
		}
		if len(row.Scores) > 0 {
			if err := json.Unmarshal(row.Scores, &team.Scores); err != nil {
				return nil, fmt.Errorf("unmarshal scores roster %d: %w", row.RosterID, err)
			}
		}
		if len(row.Metrics) > 0 {
			if err := json.Unmarshal(row.Metrics, &team.Metrics); err != nil {
				return nil, fmt.Errorf("unmarshal metrics roster %d: %w", row.RosterID, err)
			}
		}
		snap.Teams = append(snap.Teams, team)
		if row.CreatedAt.After(snap.CreatedAt) {
			snap.CreatedAt = row.CreatedAt
		}
	}
	return snap, nil
}
