package scores

import (
	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/stats"
)

const (
	agePeak     = 26
	ageBand     = 0.12
	ageSlope    = 0.03
	demandFloor = 0.85
	demandSpan  = 0.30

	// Redraft buyers care about near-term availability, so injuries
	// discount harder than in dynasty.
	injuryWeightDynasty = 0.25
	injuryWeightRedraft = 0.60

	demandMinSample = 30
)

// marketScore is the league percentile of the team's age-adjusted,
// demand-adjusted, injury-discounted roster value.
func (c *Calculator) marketScore(f TeamFacts) int {
	pct := stats.PercentileRank(c.marketByRoster[f.RosterID], c.marketValues)
	return toScore(pct)
}

func (c *Calculator) adjustedMarketValue(f TeamFacts) float64 {
	injuryWeight := injuryWeightDynasty
	if c.cfg.Format == domain.FormatRedraft {
		injuryWeight = injuryWeightRedraft
	}

	var total float64
	for _, p := range f.Players {
		v := p.Value(c.cfg.Format)
		if v <= 0 {
			continue
		}
		if c.cfg.Format == domain.FormatDynasty {
			v *= ageCurve(p.Age)
		}
		v *= c.demandMultiplier(p.Position)

		sev := EffectiveSeverity(p.Injury, c.cfg.Now)
		v *= 1 - sev*injuryWeight

		total += v
	}
	return total
}

// ageCurve peaks at 26 and decays linearly inside a ±12% band. Unknown
// ages are neutral.
func ageCurve(age int) float64 {
	if age <= 0 {
		return 1.0
	}
	dist := float64(age - agePeak)
	if dist < 0 {
		dist = -dist
	}
	mult := (1 + ageBand) - ageSlope*dist
	if mult < 1-ageBand {
		mult = 1 - ageBand
	}
	return mult
}

// demandMultiplier scales 0.85-1.15 around a neutral demand score of 50.
// Missing positions and thin samples stay neutral.
func (c *Calculator) demandMultiplier(position string) float64 {
	score := 50.0
	if d, ok := c.cfg.Demand[position]; ok && d.Sample >= demandMinSample {
		score = d.Score
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return demandFloor + demandSpan*(score/100)
}
