package scores

import "github.com/rosterwire/leaguerank/internal/stats"

// luckScore is the league percentile of actualWins minus expectedWins,
// where expected wins accrue weekly all-play credit (opponents outscored
// over league size minus one). High scores mean a team has banked more wins
// than its scoring earned.
func (c *Calculator) luckScore(f TeamFacts) int {
	pct := stats.PercentileRank(c.luckByRoster[f.RosterID], c.luckDeltas)
	return toScore(pct)
}
