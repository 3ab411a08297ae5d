package scores

import "github.com/rosterwire/leaguerank/internal/domain"

const (
	prospectValueCap    = 60.0
	prospectValueWeight = 0.5
)

// roundBonus rewards projected early draft capital.
func roundBonus(round int) float64 {
	switch round {
	case 1:
		return 15
	case 2:
		return 8
	case 3:
		return 4
	default:
		if round >= 4 {
			return 2
		}
		return 0
	}
}

// futureCapitalScore sums capped prospect contributions plus projected
// draft-round bonuses, clamped to 0-100. Redraft leagues have no future,
// so the score is 0.
func (c *Calculator) futureCapitalScore(f TeamFacts) int {
	if c.cfg.Format != domain.FormatDynasty {
		return 0
	}

	var total float64
	for _, p := range f.Players {
		if !p.Prospect {
			continue
		}
		v := p.DynastyValue
		if v > prospectValueCap {
			v = prospectValueCap
		}
		total += v*prospectValueWeight + roundBonus(p.ProjectedRound)
	}
	return toScore(total / 100)
}
