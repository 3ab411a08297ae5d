package providers

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// guard wraps one upstream dependency with a circuit breaker, a rate
// limiter, and a per-call timeout. Nothing in the ranking pipeline may
// block indefinitely on a provider.
type guard struct {
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	timeout time.Duration
	log     zerolog.Logger
}

func newGuard(name string, rps float64, timeout time.Duration, logger zerolog.Logger) *guard {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("provider", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("provider circuit state change")
		},
	}
	return &guard{
		breaker: gobreaker.NewCircuitBreaker(settings),
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		timeout: timeout,
		log:     logger,
	}
}

func (g *guard) do(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return fn(callCtx)
	})
}

// GuardConfig tunes the resilient wrapper.
type GuardConfig struct {
	RequestsPerSecond float64
	Timeout           time.Duration
}

func (c GuardConfig) withDefaults() GuardConfig {
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 10
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return c
}

// Resilient wraps a provider Bundle so every call is breaker-protected,
// rate-limited, and time-bounded. Fallback to neutral defaults stays with
// the pipeline, which knows which sub-score each feed serves.
func Resilient(inner Bundle, cfg GuardConfig, logger zerolog.Logger) Bundle {
	cfg = cfg.withDefaults()
	return Bundle{
		League:    &guardedLeague{inner: inner.League, g: newGuard("league", cfg.RequestsPerSecond, cfg.Timeout, logger)},
		Valuation: &guardedValuation{inner: inner.Valuation, g: newGuard("valuation", cfg.RequestsPerSecond, cfg.Timeout, logger)},
		Trades:    &guardedTrades{inner: inner.Trades, g: newGuard("trades", cfg.RequestsPerSecond, cfg.Timeout, logger)},
		Injuries:  &guardedInjuries{inner: inner.Injuries, g: newGuard("injuries", cfg.RequestsPerSecond, cfg.Timeout, logger)},
		Demand:    &guardedDemand{inner: inner.Demand, g: newGuard("demand", cfg.RequestsPerSecond, cfg.Timeout, logger)},
	}
}

type guardedLeague struct {
	inner LeagueProvider
	g     *guard
}

func (p *guardedLeague) League(ctx context.Context, leagueID string) (*League, error) {
	v, err := p.g.do(ctx, func(ctx context.Context) (interface{}, error) {
		return p.inner.League(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*League), nil
}

func (p *guardedLeague) Rosters(ctx context.Context, leagueID string) ([]Roster, error) {
	v, err := p.g.do(ctx, func(ctx context.Context) (interface{}, error) {
		return p.inner.Rosters(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Roster), nil
}

func (p *guardedLeague) Scoreboard(ctx context.Context, leagueID string, week int) ([]TeamPoints, error) {
	v, err := p.g.do(ctx, func(ctx context.Context) (interface{}, error) {
		return p.inner.Scoreboard(ctx, leagueID, week)
	})
	if err != nil {
		return nil, err
	}
	return v.([]TeamPoints), nil
}

func (p *guardedLeague) Bracket(ctx context.Context, leagueID string) ([]BracketFinish, error) {
	v, err := p.g.do(ctx, func(ctx context.Context) (interface{}, error) {
		return p.inner.Bracket(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]BracketFinish), nil
}

type guardedValuation struct {
	inner ValuationProvider
	g     *guard
}

func (p *guardedValuation) Values(ctx context.Context, playerIDs []string) (map[string]PlayerValue, error) {
	v, err := p.g.do(ctx, func(ctx context.Context) (interface{}, error) {
		return p.inner.Values(ctx, playerIDs)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]PlayerValue), nil
}

type guardedTrades struct {
	inner TradeProvider
	g     *guard
}

func (p *guardedTrades) Trades(ctx context.Context, leagueID string) ([]Trade, error) {
	v, err := p.g.do(ctx, func(ctx context.Context) (interface{}, error) {
		return p.inner.Trades(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Trade), nil
}

type guardedInjuries struct {
	inner InjuryProvider
	g     *guard
}

func (p *guardedInjuries) Injuries(ctx context.Context) (map[string]InjuryReport, error) {
	v, err := p.g.do(ctx, func(ctx context.Context) (interface{}, error) {
		return p.inner.Injuries(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]InjuryReport), nil
}

type guardedDemand struct {
	inner DemandProvider
	g     *guard
}

func (p *guardedDemand) DemandIndex(ctx context.Context, leagueID string) (map[string]PositionDemand, error) {
	v, err := p.g.do(ctx, func(ctx context.Context) (interface{}, error) {
		return p.inner.DemandIndex(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]PositionDemand), nil
}
