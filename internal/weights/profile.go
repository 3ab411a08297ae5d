package weights

import (
	"github.com/rosterwire/leaguerank/internal/domain"
)

// Profile holds the seven non-negative blend coefficients for one
// phase/format cell. Coefficients need not sum to 1; the composite formula
// clamps the weighted sum after scaling inputs to [0,1].
type Profile struct {
	Win           float64 `yaml:"win" json:"win"`
	Power         float64 `yaml:"power" json:"power"`
	Luck          float64 `yaml:"luck" json:"luck"`
	Market        float64 `yaml:"market" json:"market"`
	Skill         float64 `yaml:"skill" json:"skill"`
	DraftGain     float64 `yaml:"draft_gain" json:"draft_gain"`
	FutureCapital float64 `yaml:"future_capital" json:"future_capital"`
}

// Valid reports whether every coefficient is non-negative and at least one
// is positive.
func (p Profile) Valid() bool {
	coeffs := []float64{p.Win, p.Power, p.Luck, p.Market, p.Skill, p.DraftGain, p.FutureCapital}
	var sum float64
	for _, c := range coeffs {
		if c < 0 {
			return false
		}
		sum += c
	}
	return sum > 0
}

// ApplyLearned transforms a base profile under a learned parameter set:
// the luck weight scales inversely with luck dampening, the future-capital
// weight shifts by the learned influence relative to its 0.05 pivot, and
// the five remaining weights rebalance proportionally so the shift is
// absorbed without changing overall scale.
func (p Profile) ApplyLearned(params domain.LearnedParams) Profile {
	out := p

	damp := params.LuckDampening
	if damp < 1 {
		damp = 1
	}
	out.Luck = p.Luck * (2.0 / damp)

	shift := params.FutureCapitalInfluence - 0.05
	out.FutureCapital = p.FutureCapital + shift
	if out.FutureCapital < 0 {
		shift = -p.FutureCapital
		out.FutureCapital = 0
	}

	rest := p.Win + p.Power + p.Market + p.Skill + p.DraftGain
	if rest > 0 {
		scale := (rest - shift) / rest
		if scale < 0 {
			scale = 0
		}
		out.Win = p.Win * scale
		out.Power = p.Power * scale
		out.Market = p.Market * scale
		out.Skill = p.Skill * scale
		out.DraftGain = p.DraftGain * scale
	}
	return out
}
