package domain

import "fmt"

// Phase identifies where a league sits in its season lifecycle. It is
// resolved once per ranking run from explicit league status and week inputs
// and threaded through everything downstream; nothing re-derives it.
type Phase string

const (
	PhaseInSeason   Phase = "inseason"
	PhaseOffSeason  Phase = "offseason"
	PhasePostDraft  Phase = "postDraft"
	PhasePostSeason Phase = "postSeason"
)

// Format distinguishes dynasty leagues (multi-year rosters, prospect value)
// from redraft leagues (single-season rosters).
type Format string

const (
	FormatDynasty Format = "dynasty"
	FormatRedraft Format = "redraft"
)

// ResolvePhase maps a provider league status plus the current week to a
// closed Phase value. Unknown statuses resolve to off-season, the most
// conservative weighting.
func ResolvePhase(status string, week int) Phase {
	switch status {
	case "in_season":
		if week < 1 {
			return PhasePostDraft
		}
		return PhaseInSeason
	case "post_season", "complete":
		return PhasePostSeason
	case "drafting", "post_draft":
		return PhasePostDraft
	case "pre_draft":
		return PhaseOffSeason
	default:
		return PhaseOffSeason
	}
}

// LeagueClass scopes learned parameters: format crossed with the superflex
// flag, further split by phase. Two leagues in the same class share an
// applied parameter set.
type LeagueClass struct {
	Format    Format
	Superflex bool
	Phase     Phase
}

// Key returns the stable string form used as a storage key, e.g.
// "dynasty:sf:inseason" or "redraft:std:postSeason".
func (c LeagueClass) Key() string {
	flex := "std"
	if c.Superflex {
		flex = "sf"
	}
	return fmt.Sprintf("%s:%s:%s", c.Format, flex, c.Phase)
}
