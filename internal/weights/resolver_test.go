package weights

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterwire/leaguerank/internal/domain"
)

type stubStore struct {
	doc   *Document
	err   error
	loads int
}

func (s *stubStore) Load() (*Document, error) {
	s.loads++
	return s.doc, s.err
}

func TestResolver_FallsBackOnLoadError(t *testing.T) {
	store := &stubStore{err: errors.New("boom")}
	r := NewResolver(store, zerolog.Nop())

	p := r.Resolve(domain.PhaseInSeason, domain.FormatDynasty, nil)
	def, _ := DefaultDocument().Profile(domain.PhaseInSeason, domain.FormatDynasty)
	assert.Equal(t, def, p)
}

func TestResolver_CacheTTL(t *testing.T) {
	now := time.Date(2025, 11, 12, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := &stubStore{doc: DefaultDocument()}
	r := NewResolver(store, zerolog.Nop(), WithTTL(10*time.Minute), WithClock(clock))

	r.Resolve(domain.PhaseInSeason, domain.FormatRedraft, nil)
	r.Resolve(domain.PhaseOffSeason, domain.FormatRedraft, nil)
	assert.Equal(t, 1, store.loads, "second resolve within TTL must hit cache")

	now = now.Add(11 * time.Minute)
	r.Resolve(domain.PhaseInSeason, domain.FormatRedraft, nil)
	assert.Equal(t, 2, store.loads, "resolve after TTL must reload")
}

func TestFileStore_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: [not, a, map"), 0o644))

	_, err := FileStore{Path: path}.Load()
	assert.Error(t, err)

	// The resolver still serves defaults.
	r := NewResolver(FileStore{Path: path}, zerolog.Nop())
	p := r.Resolve(domain.PhasePostSeason, domain.FormatRedraft, nil)
	assert.True(t, p.Valid())
}

func TestApplyLearned_LuckDampening(t *testing.T) {
	base := Profile{Win: 0.3, Power: 0.3, Luck: 0.1, Market: 0.1, Skill: 0.1, FutureCapital: 0.1}

	damped := base.ApplyLearned(domain.LearnedParams{LuckDampening: 4.0, FutureCapitalInfluence: 0.05})
	assert.InDelta(t, 0.05, damped.Luck, 1e-9)

	// Dampening below 1 clamps to 1, doubling the luck weight.
	boosted := base.ApplyLearned(domain.LearnedParams{LuckDampening: 0.5, FutureCapitalInfluence: 0.05})
	assert.InDelta(t, 0.2, boosted.Luck, 1e-9)
}

func TestApplyLearned_FutureCapitalRebalance(t *testing.T) {
	base := Profile{Win: 0.2, Power: 0.3, Luck: 0.1, Market: 0.2, Skill: 0.1, DraftGain: 0.05, FutureCapital: 0.05}
	params := domain.LearnedParams{LuckDampening: 2.0, FutureCapitalInfluence: 0.15}

	out := base.ApplyLearned(params)

	// Shift of +0.10 lands on future capital.
	assert.InDelta(t, 0.15, out.FutureCapital, 1e-9)

	// The five rebalanced weights absorb the shift: their sum drops by it.
	restBefore := base.Win + base.Power + base.Market + base.Skill + base.DraftGain
	restAfter := out.Win + out.Power + out.Market + out.Skill + out.DraftGain
	assert.InDelta(t, restBefore-0.10, restAfter, 1e-9)

	// Overall scale is preserved (luck aside, which dampening controls).
	totalBefore := restBefore + base.FutureCapital
	totalAfter := restAfter + out.FutureCapital
	assert.InDelta(t, totalBefore, totalAfter, 1e-9)

	// Proportions among the five are unchanged.
	assert.InDelta(t, base.Power/base.Win, out.Power/out.Win, 1e-9)
}

func TestDefaultDocument_AllCellsValid(t *testing.T) {
	doc := DefaultDocument()
	require.NoError(t, doc.Validate())

	for _, ph := range []domain.Phase{domain.PhaseInSeason, domain.PhaseOffSeason, domain.PhasePostDraft, domain.PhasePostSeason} {
		for _, fm := range []domain.Format{domain.FormatDynasty, domain.FormatRedraft} {
			p, ok := doc.Profile(ph, fm)
			require.Truef(t, ok, "missing %s/%s", ph, fm)
			require.Truef(t, p.Valid(), "invalid %s/%s", ph, fm)
			if fm == domain.FormatRedraft {
				assert.Zerof(t, p.FutureCapital, "redraft %s carries future capital weight", ph)
			}
		}
	}
}
