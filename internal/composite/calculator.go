// Package composite blends the six normalized sub-scores into the single
// 0-100 score that ranking, anti-gaming, and backtesting all share. There
// is exactly one formula: the weight-profile-driven blend that parameter
// learning calibrates against.
package composite

import (
	"math"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/stats"
	"github.com/rosterwire/leaguerank/internal/weights"
)

// draftGainNeutral stands in for the draft-gain signal until a draft data
// feed exists; the coefficient still participates in rebalancing.
const draftGainNeutral = 0.5

// Score computes round(100 * clamp01(Σ w_i · x_i)) over the sub-scores
// scaled to [0,1]. Luck passes through a symmetric transform that rewards
// near-neutral luck: deserved records score higher than fortunate ones.
func Score(sub domain.SubScores, profile weights.Profile) int {
	x := profile.Win*unit(sub.Win) +
		profile.Power*unit(sub.Power) +
		profile.Luck*luckNeutrality(sub.Luck) +
		profile.Market*unit(sub.Market) +
		profile.Skill*unit(sub.Skill) +
		profile.DraftGain*draftGainNeutral +
		profile.FutureCapital*unit(sub.FutureCapital)

	return int(math.Round(100 * stats.Clamp01(x)))
}

func unit(score int) float64 {
	return stats.Clamp01(float64(score) / 100)
}

// luckNeutrality maps a luck percentile to 1 at the neutral midpoint and 0
// at either extreme, so teams whose records match their scoring are
// rewarded over teams riding variance in either direction.
func luckNeutrality(luck int) float64 {
	pct := unit(luck)
	return 1 - math.Abs(pct-0.5)*2
}
