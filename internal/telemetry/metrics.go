// Package telemetry exposes the engine's Prometheus metrics. Everything is
// registered once on the default registry; callers just increment.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts completed ranking runs per league outcome.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leaguerank",
		Name:      "runs_total",
		Help:      "Ranking runs by outcome.",
	}, []string{"outcome"})

	// FeedDegradations counts provider feeds that fell back to neutral
	// values during a run.
	FeedDegradations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leaguerank",
		Name:      "feed_degradations_total",
		Help:      "Provider feeds degraded to neutral inputs, by feed.",
	}, []string{"feed"})

	// ConstrainedTeams counts teams whose rank the anti-gaming pass moved
	// off raw composite order.
	ConstrainedTeams = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "leaguerank",
		Name:      "constrained_teams_total",
		Help:      "Teams re-ranked away from raw composite order.",
	})

	// RunDuration observes end-to-end ranking run latency per league.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "leaguerank",
		Name:      "run_duration_seconds",
		Help:      "End-to-end ranking run duration.",
		Buckets:   prometheus.DefBuckets,
	})

	// FetchDuration observes upstream fetch latency per feed.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "leaguerank",
		Name:      "fetch_duration_seconds",
		Help:      "Upstream provider fetch duration, by feed.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"feed"})
)
