package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/persistence"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestSnapshotsRepo_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapshotStore(db, time.Second)

	mock.ExpectQuery("SELECT .+ FROM league_snapshots").
		WithArgs("L1", 2025, 9).
		WillReturnRows(sqlmock.NewRows([]string{
			"roster_id", "rank", "composite", "expected_wins", "luck_delta",
			"scores", "metrics", "created_at", "week",
		}))

	_, err := repo.Get(context.Background(), "L1", 2025, 9)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotsRepo_GetUnmarshalsBundles(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapshotStore(db, time.Second)

	scores, _ := json.Marshal(domain.SubScores{Win: 80, Power: 70})
	metrics, _ := json.Marshal(domain.RawMetrics{StarterValuePct: 0.9, ExpectedWins: 6.5})

	mock.ExpectQuery("SELECT .+ FROM league_snapshots").
		WithArgs("L1", 2025, 9).
		WillReturnRows(sqlmock.NewRows([]string{
			"roster_id", "rank", "composite", "expected_wins", "luck_delta",
			"scores", "metrics", "created_at", "week",
		}).AddRow(3, 1, 84, 6.5, 0.5, scores, metrics, time.Now(), 9))

	snap, err := repo.Get(context.Background(), "L1", 2025, 9)
	require.NoError(t, err)
	require.Len(t, snap.Teams, 1)
	assert.Equal(t, 80, snap.Teams[0].Scores.Win)
	assert.Equal(t, 0.9, snap.Teams[0].Metrics.StarterValuePct)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotsRepo_UpsertIsTransactional(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSnapshotStore(db, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO league_snapshots").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO league_snapshots").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	snap := &domain.Snapshot{
		LeagueID: "L1", Season: 2025, Week: 9,
		Teams: []domain.SnapshotTeam{
			{RosterID: 1, Rank: 1, Composite: 90},
			{RosterID: 2, Rank: 2, Composite: 75},
		},
	}
	require.NoError(t, repo.Upsert(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParamsRepo_RoundTrip(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParamsStore(db, time.Second)

	applied := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM learned_params").
		WithArgs("dynasty:sf:inseason").
		WillReturnRows(sqlmock.NewRows([]string{
			"class", "injury_influence", "starter_bench_split",
			"luck_dampening", "future_capital_influence", "applied_at",
		}).AddRow("dynasty:sf:inseason", 0.30, 0.72, 2.0, 0.10, applied))

	params, err := repo.LatestApplied(context.Background(), "dynasty:sf:inseason")
	require.NoError(t, err)
	assert.Equal(t, 0.72, params.StarterBenchSplit)

	mock.ExpectExec("INSERT INTO learned_params").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Apply(context.Background(), params))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParamsRepo_LatestAppliedNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParamsStore(db, time.Second)

	mock.ExpectQuery("SELECT .+ FROM learned_params").
		WithArgs("redraft:std:offseason").
		WillReturnRows(sqlmock.NewRows([]string{
			"class", "injury_influence", "starter_bench_split",
			"luck_dampening", "future_capital_influence", "applied_at",
		}))

	_, err := repo.LatestApplied(context.Background(), "redraft:std:offseason")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestBacktestsRepo_RecordUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBacktestStore(db, time.Second)

	mock.ExpectExec("INSERT INTO backtest_results").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Record(context.Background(), &domain.BacktestResult{
		LeagueID: "L1", Season: 2025, WeekEvaluated: 8,
		Target: domain.TargetWinPct3W, SegmentKey: "dynasty:sf:inseason",
		TeamCount: 10, Brier: 0.18, NDCG: 0.91, Spearman: 0.55,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
