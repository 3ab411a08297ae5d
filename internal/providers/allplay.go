package providers

// AllPlayCredits converts one week's scoreboard into per-roster all-play
// credit: the share of league opponents each team outscored that week.
// Credit is 0 for everyone when the board has fewer than two teams.
func AllPlayCredits(board []TeamPoints) map[int]float64 {
	n := len(board)
	credits := make(map[int]float64, n)
	if n < 2 {
		for _, t := range board {
			credits[t.RosterID] = 0
		}
		return credits
	}

	for _, t := range board {
		outscored := 0
		for _, o := range board {
			if o.RosterID != t.RosterID && t.Points > o.Points {
				outscored++
			}
		}
		credits[t.RosterID] = float64(outscored) / float64(n-1)
	}
	return credits
}
