package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/weights"
)

func TestScore_NeutralLuckBeatsExtremeLuck(t *testing.T) {
	p := weights.Profile{Luck: 1.0}

	neutral := Score(domain.SubScores{Luck: 50}, p)
	lucky := Score(domain.SubScores{Luck: 100}, p)
	unlucky := Score(domain.SubScores{Luck: 0}, p)

	assert.Equal(t, 100, neutral)
	assert.Equal(t, 0, lucky)
	assert.Equal(t, 0, unlucky)
}

func TestScore_WeightedBlend(t *testing.T) {
	p := weights.Profile{Win: 0.30, Power: 0.35, Luck: 0.10, Market: 0.15, Skill: 0.10}
	sub := domain.SubScores{Win: 80, Power: 60, Luck: 50, Market: 40, Skill: 70}

	// 0.30*0.8 + 0.35*0.6 + 0.10*1.0 + 0.15*0.4 + 0.10*0.7 = 0.68
	assert.Equal(t, 68, Score(sub, p))
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	profiles := []weights.Profile{
		{Win: 1, Power: 1, Luck: 1, Market: 1, Skill: 1, DraftGain: 1, FutureCapital: 1},
		{Win: 0.01},
		weightsDefault(t, domain.PhaseInSeason, domain.FormatDynasty),
		weightsDefault(t, domain.PhasePostSeason, domain.FormatRedraft),
	}

	extremes := []int{0, 25, 50, 75, 100}
	for _, p := range profiles {
		for _, w := range extremes {
			for _, fc := range extremes {
				sub := domain.SubScores{Win: w, Power: 100 - w, Luck: w, Market: fc, Skill: 100 - fc, FutureCapital: fc}
				got := Score(sub, p)
				require.GreaterOrEqual(t, got, 0)
				require.LessOrEqual(t, got, 100)
			}
		}
	}
}

func weightsDefault(t *testing.T, phase domain.Phase, format domain.Format) weights.Profile {
	t.Helper()
	p, ok := weights.DefaultDocument().Profile(phase, format)
	require.True(t, ok)
	return p
}
