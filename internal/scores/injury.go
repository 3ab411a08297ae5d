package scores

import (
	"strings"
	"time"

	"github.com/rosterwire/leaguerank/internal/domain"
)

// statusSeverity maps normalized injury designations to a base severity in
// [0,1]. Unknown designations score 0 (missing feed entries default to
// healthy).
var statusSeverity = map[string]float64{
	"ir":           1.00,
	"out":          0.90,
	"pup":          0.85,
	"nfi":          0.80,
	"sus":          0.70,
	"suspension":   0.70,
	"doubtful":     0.60,
	"cov":          0.50,
	"questionable": 0.25,
	"probable":     0.05,
	"active":       0.00,
}

// recencyDecay discounts stale designations: a report from this week counts
// in full, one from two months ago barely at all.
func recencyDecay(reportedAt, now time.Time) float64 {
	if reportedAt.IsZero() {
		return 1.0
	}
	days := now.Sub(reportedAt).Hours() / 24
	switch {
	case days <= 3:
		return 1.0
	case days <= 7:
		return 0.85
	case days <= 14:
		return 0.65
	case days <= 28:
		return 0.45
	case days <= 56:
		return 0.30
	default:
		return 0.15
	}
}

// EffectiveSeverity is base severity times recency decay, 0 for healthy
// players.
func EffectiveSeverity(inj *InjuryFact, now time.Time) float64 {
	if inj == nil {
		return 0
	}
	sev, ok := statusSeverity[strings.ToLower(strings.TrimSpace(inj.Status))]
	if !ok {
		return 0
	}
	return sev * recencyDecay(inj.ReportedAt, now)
}

// InjuryProfile is the team-level injury summary feeding the Power and
// Market scores.
type InjuryProfile struct {
	// PowerHealthRatio is the value-weighted healthy fraction of starters.
	PowerHealthRatio float64
	// MarketDiscount is the value-weighted injured fraction of the whole
	// roster.
	MarketDiscount float64
	// RiskConcentration grows with the count of high-value, high-severity
	// players, saturating at 3.
	RiskConcentration float64
}

const (
	riskValueFloor    = 50.0
	riskSeverityFloor = 0.5
	riskSaturation    = 3.0
)

// BuildInjuryProfile aggregates per-player effective severities into the
// team-level ratios.
func BuildInjuryProfile(players []PlayerFact, format domain.Format, now time.Time) InjuryProfile {
	var starterValue, starterHealthy float64
	var rosterValue, rosterInjured float64
	riskCount := 0

	for _, p := range players {
		v := p.Value(format)
		if v <= 0 {
			continue
		}
		sev := EffectiveSeverity(p.Injury, now)

		rosterValue += v
		rosterInjured += v * sev
		if p.Starter {
			starterValue += v
			starterHealthy += v * (1 - sev)
		}
		if v > riskValueFloor && sev > riskSeverityFloor {
			riskCount++
		}
	}

	prof := InjuryProfile{PowerHealthRatio: 1.0}
	if starterValue > 0 {
		prof.PowerHealthRatio = starterHealthy / starterValue
	}
	if rosterValue > 0 {
		prof.MarketDiscount = rosterInjured / rosterValue
	}
	prof.RiskConcentration = float64(riskCount) / riskSaturation
	if prof.RiskConcentration > 1 {
		prof.RiskConcentration = 1
	}
	return prof
}
