package scores

import "github.com/rosterwire/leaguerank/internal/domain"

// sosCap bounds the strength-of-schedule adjustment to ±0.05 win
// percentage points.
const sosCap = 0.05

// winScore is winPct plus a small capped schedule adjustment. In the
// post-season it becomes a 45/55 blend of winPct and bracket finish, so a
// title run outranks a strong regular season that fizzled.
func (c *Calculator) winScore(f TeamFacts) int {
	if c.cfg.Phase == domain.PhasePostSeason {
		blend := 0.45*f.WinPct() + 0.55*finishScore(f.Playoff)
		return toScore(blend)
	}

	sos := f.ScheduleStrength
	if sos > sosCap {
		sos = sosCap
	}
	if sos < -sosCap {
		sos = -sosCap
	}
	return toScore(f.WinPct() + sos)
}

func finishScore(result PlayoffResult) float64 {
	switch result {
	case PlayoffChampion:
		return 1.00
	case PlayoffRunnerUp:
		return 0.80
	case PlayoffTop4:
		return 0.65
	case PlayoffTop6:
		return 0.50
	case PlayoffQualified:
		return 0.45
	default:
		return 0.30
	}
}
