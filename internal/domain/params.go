package domain

import "time"

// LearnedParams are the four tunable scalars the parameter learner adjusts.
// Values are always within their declared bounds and within the per-week
// movement cap of the previously applied value; only the learner writes
// them, at most once per learning cycle.
type LearnedParams struct {
	Class                  string    `json:"class" db:"class"`
	InjuryInfluence        float64   `json:"injury_influence" db:"injury_influence"`
	StarterBenchSplit      float64   `json:"starter_bench_split" db:"starter_bench_split"`
	LuckDampening          float64   `json:"luck_dampening" db:"luck_dampening"`
	FutureCapitalInfluence float64   `json:"future_capital_influence" db:"future_capital_influence"`
	AppliedAt              time.Time `json:"applied_at" db:"applied_at"`
}

// ParamBound declares the legal range and search step for one parameter.
type ParamBound struct {
	Min  float64
	Max  float64
	Step float64
}

// Parameter names used for bounds lookup and learner reporting.
const (
	ParamInjuryInfluence        = "injuryInfluence"
	ParamStarterBenchSplit      = "starterBenchSplit"
	ParamLuckDampening          = "luckDampening"
	ParamFutureCapitalInfluence = "futureCapitalInfluence"
)

// ParamBounds returns the declared bound for each tunable parameter.
func ParamBounds() map[string]ParamBound {
	return map[string]ParamBound{
		ParamInjuryInfluence:        {Min: 0.10, Max: 0.60, Step: 0.05},
		ParamStarterBenchSplit:      {Min: 0.55, Max: 0.90, Step: 0.05},
		ParamLuckDampening:          {Min: 1.0, Max: 4.0, Step: 0.5},
		ParamFutureCapitalInfluence: {Min: 0.00, Max: 0.25, Step: 0.05},
	}
}

// DefaultLearnedParams returns the built-in parameter set for a league
// class, used until a learning cycle has applied something better.
func DefaultLearnedParams(class LeagueClass) LearnedParams {
	p := LearnedParams{
		Class:             class.Key(),
		InjuryInfluence:   0.30,
		StarterBenchSplit: 0.70,
		LuckDampening:     2.0,
	}
	if class.Format == FormatDynasty {
		p.FutureCapitalInfluence = 0.10
	}
	if class.Format == FormatRedraft {
		p.StarterBenchSplit = 0.80
		p.InjuryInfluence = 0.40
	}
	return p
}

// Get returns the named parameter's current value.
func (p LearnedParams) Get(name string) float64 {
	switch name {
	case ParamInjuryInfluence:
		return p.InjuryInfluence
	case ParamStarterBenchSplit:
		return p.StarterBenchSplit
	case ParamLuckDampening:
		return p.LuckDampening
	case ParamFutureCapitalInfluence:
		return p.FutureCapitalInfluence
	}
	return 0
}

// With returns a copy with the named parameter replaced, clamped to its
// declared bound.
func (p LearnedParams) With(name string, value float64) LearnedParams {
	b, ok := ParamBounds()[name]
	if ok {
		if value < b.Min {
			value = b.Min
		}
		if value > b.Max {
			value = b.Max
		}
	}
	switch name {
	case ParamInjuryInfluence:
		p.InjuryInfluence = value
	case ParamStarterBenchSplit:
		p.StarterBenchSplit = value
	case ParamLuckDampening:
		p.LuckDampening = value
	case ParamFutureCapitalInfluence:
		p.FutureCapitalInfluence = value
	}
	return p
}
