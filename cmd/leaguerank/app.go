package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/rosterwire/leaguerank/internal/config"
	"github.com/rosterwire/leaguerank/internal/persistence"
	"github.com/rosterwire/leaguerank/internal/persistence/postgres"
	"github.com/rosterwire/leaguerank/internal/persistence/rediscache"
	"github.com/rosterwire/leaguerank/internal/providers"
	"github.com/rosterwire/leaguerank/internal/weights"
)

const storeTimeout = 5 * time.Second

// stores bundles the three persistence contracts however they were wired:
// Postgres with an optional Redis cache, or all in memory.
type stores struct {
	snapshots persistence.SnapshotStore
	backtests persistence.BacktestStore
	params    persistence.ParamsStore
}

func buildStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Info().Msg("no database configured, using in-memory stores")
		mem := persistence.NewMemoryStore()
		return &stores{snapshots: mem, backtests: mem, params: mem}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &stores{
		snapshots: postgres.NewSnapshotStore(db, storeTimeout),
		backtests: postgres.NewBacktestStore(db, storeTimeout),
		params:    postgres.NewParamsStore(db, storeTimeout),
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		s.snapshots = rediscache.New(s.snapshots, rdb, cfg.RedisTTL, log.Logger)
	}
	return s, nil
}

func buildProviders(cfg *config.Config) (providers.Bundle, error) {
	if cfg.FixturePath == "" {
		return providers.Bundle{}, fmt.Errorf("no fixture path configured; set fixture_path or LEAGUERANK_FIXTURE_PATH")
	}
	fixture, err := providers.LoadFixture(cfg.FixturePath)
	if err != nil {
		return providers.Bundle{}, err
	}
	guard := providers.GuardConfig{
		RequestsPerSecond: cfg.ProviderRPS,
		Timeout:           cfg.ProviderTimeout,
	}
	return providers.Resilient(fixture.Bundle(), guard, log.Logger), nil
}

func buildResolver(cfg *config.Config) *weights.Resolver {
	var store weights.Store
	if cfg.WeightsPath != "" {
		store = weights.FileStore{Path: cfg.WeightsPath}
	}
	return weights.NewResolver(store, log.Logger, weights.WithTTL(cfg.WeightsTTL))
}

// serveMetrics exposes the Prometheus endpoint for the lifetime of the
// command.
func serveMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
}
