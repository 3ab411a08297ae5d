package weights

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rosterwire/leaguerank/internal/domain"
)

// FormatProfiles pairs the dynasty and redraft profiles for one phase.
type FormatProfiles struct {
	Dynasty Profile `yaml:"dynasty" json:"dynasty"`
	Redraft Profile `yaml:"redraft" json:"redraft"`
}

// Document is the versioned weight configuration: one profile per
// phase × format cell, eight in total.
type Document struct {
	Version   int                      `yaml:"version" json:"version"`
	UpdatedAt time.Time                `yaml:"updated_at" json:"updated_at"`
	Profiles  map[string]FormatProfiles `yaml:"profiles" json:"profiles"`
}

// Profile selects the cell for a phase and format. Missing cells return
// false so the resolver can fall back to defaults.
func (d *Document) Profile(phase domain.Phase, format domain.Format) (Profile, bool) {
	fp, ok := d.Profiles[string(phase)]
	if !ok {
		return Profile{}, false
	}
	p := fp.Dynasty
	if format == domain.FormatRedraft {
		p = fp.Redraft
	}
	if !p.Valid() {
		return Profile{}, false
	}
	return p, true
}

// Validate checks that every phase cell exists and every profile is usable.
func (d *Document) Validate() error {
	phases := []domain.Phase{
		domain.PhaseInSeason, domain.PhaseOffSeason,
		domain.PhasePostDraft, domain.PhasePostSeason,
	}
	for _, ph := range phases {
		fp, ok := d.Profiles[string(ph)]
		if !ok {
			return fmt.Errorf("weights config missing phase %q", ph)
		}
		if !fp.Dynasty.Valid() {
			return fmt.Errorf("weights config phase %q: invalid dynasty profile", ph)
		}
		if !fp.Redraft.Valid() {
			return fmt.Errorf("weights config phase %q: invalid redraft profile", ph)
		}
	}
	return nil
}

// Store loads the current weight configuration document.
type Store interface {
	Load() (*Document, error)
}

// FileStore reads the document from a YAML file on each load.
type FileStore struct {
	Path string
}

// Load parses and validates the configured file.
func (s FileStore) Load() (*Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read weights config %s: %w", s.Path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse weights config %s: %w", s.Path, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DefaultDocument returns the embedded fallback profiles used whenever the
// config store is unavailable or malformed.
func DefaultDocument() *Document {
	return &Document{
		Version: 1,
		Profiles: map[string]FormatProfiles{
			string(domain.PhaseInSeason): {
				Dynasty: Profile{Win: 0.22, Power: 0.30, Luck: 0.08, Market: 0.15, Skill: 0.10, DraftGain: 0.05, FutureCapital: 0.10},
				Redraft: Profile{Win: 0.30, Power: 0.35, Luck: 0.10, Market: 0.15, Skill: 0.10},
			},
			string(domain.PhaseOffSeason): {
				Dynasty: Profile{Win: 0.05, Power: 0.30, Market: 0.30, Skill: 0.10, DraftGain: 0.05, FutureCapital: 0.20},
				Redraft: Profile{Win: 0.10, Power: 0.50, Market: 0.30, Skill: 0.10},
			},
			string(domain.PhasePostDraft): {
				Dynasty: Profile{Win: 0.05, Power: 0.30, Market: 0.25, Skill: 0.10, DraftGain: 0.15, FutureCapital: 0.15},
				Redraft: Profile{Win: 0.05, Power: 0.45, Market: 0.25, Skill: 0.15, DraftGain: 0.10},
			},
			string(domain.PhasePostSeason): {
				Dynasty: Profile{Win: 0.35, Power: 0.20, Luck: 0.10, Market: 0.10, Skill: 0.10, DraftGain: 0.05, FutureCapital: 0.10},
				Redraft: Profile{Win: 0.45, Power: 0.25, Luck: 0.10, Market: 0.10, Skill: 0.10},
			},
		},
	}
}
