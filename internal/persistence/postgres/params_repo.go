package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/persistence"
)

type paramsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewParamsStore creates a PostgreSQL-backed learned-parameter store.
// Records append; the latest applied row per class wins.
func NewParamsStore(db *sqlx.DB, timeout time.Duration) persistence.ParamsStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &paramsRepo{db: db, timeout: timeout}
}

func (r *paramsRepo) LatestApplied(ctx context.Context, classKey string) (*domain.LearnedParams, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT class, injury_influence, starter_bench_split, luck_dampening,
		       future_capital_influence, applied_at
		FROM learned_params
		WHERE class = $1
		ORDER BY applied_at DESC
		LIMIT 1`

	var params domain.LearnedParams
	if err := r.db.GetContext(ctx, &params, query, classKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("select latest params for %s: %w", classKey, err)
	}
	return &params, nil
}

func (r *paramsRepo) Apply(ctx context.Context, params *domain.LearnedParams) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	appliedAt := params.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO learned_params
			(class, injury_influence, starter_bench_split, luck_dampening,
			 future_capital_influence, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query,
		params.Class, params.InjuryInfluence, params.StarterBenchSplit,
		params.LuckDampening, params.FutureCapitalInfluence, appliedAt); err != nil {
		return fmt.Errorf("insert applied params for %s: %w", params.Class, err)
	}
	return nil
}
