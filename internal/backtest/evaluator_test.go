package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/persistence"
	"github.com/rosterwire/leaguerank/internal/providers"
)

type fakeLeague struct {
	boards map[int][]providers.TeamPoints
}

func (f *fakeLeague) League(context.Context, string) (*providers.League, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLeague) Rosters(context.Context, string) ([]providers.Roster, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLeague) Scoreboard(_ context.Context, _ string, week int) ([]providers.TeamPoints, error) {
	board, ok := f.boards[week]
	if !ok {
		return nil, errors.New("no scoreboard")
	}
	return board, nil
}

func (f *fakeLeague) Bracket(context.Context, string) ([]providers.BracketFinish, error) {
	return nil, errors.New("not implemented")
}

func seedSnapshot(t *testing.T, store *persistence.MemoryStore, week int, composites []int, ranks []int) {
	t.Helper()
	snap := &domain.Snapshot{LeagueID: "lg1", Season: 2025, Week: week}
	for i, c := range composites {
		snap.Teams = append(snap.Teams, domain.SnapshotTeam{
			RosterID:  i + 1,
			Rank:      ranks[i],
			Composite: c,
		})
	}
	require.NoError(t, store.Upsert(context.Background(), snap))
}

func TestEvaluateInsufficientSample(t *testing.T) {
	store := persistence.NewMemoryStore()
	ev := NewEvaluator(store, nil, zerolog.Nop())

	_, err := ev.Evaluate(context.Background(), Request{
		LeagueID: "lg1", Season: 2025, Week: 5, Target: domain.TargetPlayoffQual,
	})
	assert.ErrorIs(t, err, ErrInsufficientSample, "missing snapshot")

	seedSnapshot(t, store, 5, []int{80, 60, 40}, []int{1, 2, 3})
	_, err = ev.Evaluate(context.Background(), Request{
		LeagueID: "lg1", Season: 2025, Week: 5, Target: domain.TargetPlayoffQual,
	})
	assert.ErrorIs(t, err, ErrInsufficientSample, "three teams is below the floor")
}

func TestEvaluateWinPct3W(t *testing.T) {
	store := persistence.NewMemoryStore()
	seedSnapshot(t, store, 5, []int{80, 60, 40, 20}, []int{1, 2, 3, 4})

	// Identical boards for all three forward weeks: roster 1 outscores
	// everyone, roster 4 nobody.
	board := []providers.TeamPoints{
		{RosterID: 1, Points: 130},
		{RosterID: 2, Points: 120},
		{RosterID: 3, Points: 110},
		{RosterID: 4, Points: 100},
	}
	league := &fakeLeague{boards: map[int][]providers.TeamPoints{6: board, 7: board, 8: board}}
	ev := NewEvaluator(store, league, zerolog.Nop())

	res, err := ev.Evaluate(context.Background(), Request{
		LeagueID: "lg1", Season: 2025, Week: 5,
		Target: domain.TargetWinPct3W, SegmentKey: "dynasty:sf:inseason",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.HorizonWeeks)
	assert.Equal(t, 4, res.TeamCount)
	assert.Equal(t, "dynasty:sf:inseason", res.SegmentKey)

	// Ordered by predicted descending; actual is the all-play share.
	require.Len(t, res.Teams, 4)
	assert.Equal(t, 1, res.Teams[0].RosterID)
	assert.InDelta(t, 1.0, res.Teams[0].Actual, 1e-12)
	assert.InDelta(t, 2.0/3, res.Teams[1].Actual, 1e-12)
	assert.InDelta(t, 1.0/3, res.Teams[2].Actual, 1e-12)
	assert.Zero(t, res.Teams[3].Actual)

	// Predictions perfectly order outcomes here.
	assert.InDelta(t, 1.0, res.NDCG, 1e-12)
	assert.InDelta(t, 1.0, res.Spearman, 1e-12)
}

func TestEvaluateWinPct3WMissingWeek(t *testing.T) {
	store := persistence.NewMemoryStore()
	seedSnapshot(t, store, 5, []int{80, 60, 40, 20}, []int{1, 2, 3, 4})

	board := []providers.TeamPoints{
		{RosterID: 1, Points: 130}, {RosterID: 2, Points: 120},
		{RosterID: 3, Points: 110}, {RosterID: 4, Points: 100},
	}
	// Week 8 never played.
	league := &fakeLeague{boards: map[int][]providers.TeamPoints{6: board, 7: board}}
	ev := NewEvaluator(store, league, zerolog.Nop())

	_, err := ev.Evaluate(context.Background(), Request{
		LeagueID: "lg1", Season: 2025, Week: 5, Target: domain.TargetWinPct3W,
	})
	assert.ErrorIs(t, err, ErrMissingOutcome)
}

func TestEvaluateWinPct3WNoProvider(t *testing.T) {
	store := persistence.NewMemoryStore()
	seedSnapshot(t, store, 5, []int{80, 60, 40, 20}, []int{1, 2, 3, 4})
	ev := NewEvaluator(store, nil, zerolog.Nop())

	_, err := ev.Evaluate(context.Background(), Request{
		LeagueID: "lg1", Season: 2025, Week: 5, Target: domain.TargetWinPct3W,
	})
	assert.ErrorIs(t, err, ErrMissingOutcome)
}

func TestEvaluatePlayoffQual(t *testing.T) {
	store := persistence.NewMemoryStore()
	seedSnapshot(t, store, 5, []int{80, 60, 40, 20}, []int{1, 2, 3, 4})
	// Final standings flip rosters 2 and 3.
	seedSnapshot(t, store, 15, []int{75, 50, 55, 25}, []int{1, 3, 2, 4})
	ev := NewEvaluator(store, nil, zerolog.Nop())

	res, err := ev.Evaluate(context.Background(), Request{
		LeagueID: "lg1", Season: 2025, Week: 5,
		Target: domain.TargetPlayoffQual, PlayoffCutoff: 2,
	})
	require.NoError(t, err)

	byRoster := make(map[int]float64)
	for _, tp := range res.Teams {
		byRoster[tp.RosterID] = tp.Actual
	}
	assert.Equal(t, 1.0, byRoster[1])
	assert.Equal(t, 0.0, byRoster[2], "slipped to rank 3, outside the cutoff")
	assert.Equal(t, 1.0, byRoster[3])
	assert.Equal(t, 0.0, byRoster[4])
}

func TestEvaluateChampionshipFinish(t *testing.T) {
	store := persistence.NewMemoryStore()
	seedSnapshot(t, store, 5, []int{80, 60, 40, 20}, []int{1, 2, 3, 4})
	seedSnapshot(t, store, 16, []int{75, 55, 50, 25}, []int{1, 2, 3, 4})
	ev := NewEvaluator(store, nil, zerolog.Nop())

	res, err := ev.Evaluate(context.Background(), Request{
		LeagueID: "lg1", Season: 2025, Week: 5, Target: domain.TargetChampionshipFinish,
	})
	require.NoError(t, err)

	byRoster := make(map[int]float64)
	for _, tp := range res.Teams {
		byRoster[tp.RosterID] = tp.Actual
	}
	assert.InDelta(t, 1.0, byRoster[1], 1e-12)
	assert.InDelta(t, 2.0/3, byRoster[2], 1e-12)
	assert.InDelta(t, 1.0/3, byRoster[3], 1e-12)
	assert.Zero(t, byRoster[4])
}

func TestEvaluateSeasonNotOver(t *testing.T) {
	store := persistence.NewMemoryStore()
	seedSnapshot(t, store, 5, []int{80, 60, 40, 20}, []int{1, 2, 3, 4})
	seedSnapshot(t, store, 9, []int{78, 58, 42, 22}, []int{1, 2, 3, 4})
	ev := NewEvaluator(store, nil, zerolog.Nop())

	_, err := ev.Evaluate(context.Background(), Request{
		LeagueID: "lg1", Season: 2025, Week: 5, Target: domain.TargetPlayoffQual,
	})
	assert.ErrorIs(t, err, ErrMissingOutcome, "no week 14+ snapshot yet")
}

func TestEvaluateRecomputeOverridesComposite(t *testing.T) {
	store := persistence.NewMemoryStore()
	seedSnapshot(t, store, 5, []int{80, 60, 40, 20}, []int{1, 2, 3, 4})
	seedSnapshot(t, store, 15, []int{75, 55, 50, 25}, []int{1, 2, 3, 4})
	ev := NewEvaluator(store, nil, zerolog.Nop())

	// Invert the stored ordering: candidate parameters that prefer the
	// weakest composite.
	res, err := ev.Evaluate(context.Background(), Request{
		LeagueID: "lg1", Season: 2025, Week: 5, Target: domain.TargetPlayoffQual,
		PlayoffCutoff: 2,
		Recompute: func(team domain.SnapshotTeam) float64 {
			return 1 - float64(team.Composite)/100
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Teams[0].RosterID, "recomputed ordering leads with roster 4")
	assert.InDelta(t, 0.8, res.Teams[0].Predicted, 1e-12)
	assert.Negative(t, res.Spearman, "inverted predictions anti-correlate with outcomes")
}
