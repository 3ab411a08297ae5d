package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/rosterwire/leaguerank/internal/domain"
)

// MemoryStore is an in-process implementation of all three store contracts,
// used by tests and offline runs. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[snapKey]*domain.Snapshot
	backtests map[btKey]*domain.BacktestResult
	params    map[string][]*domain.LearnedParams
}

type snapKey struct {
	league string
	season int
	week   int
}

type btKey struct {
	league string
	season int
	week   int
	target domain.TargetType
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[snapKey]*domain.Snapshot),
		backtests: make(map[btKey]*domain.BacktestResult),
		params:    make(map[string][]*domain.LearnedParams),
	}
}

// Get implements SnapshotStore.
func (m *MemoryStore) Get(_ context.Context, leagueID string, season, week int) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[snapKey{leagueID, season, week}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *snap
	cp.Teams = append([]domain.SnapshotTeam(nil), snap.Teams...)
	return &cp, nil
}

// Upsert implements SnapshotStore.
func (m *MemoryStore) Upsert(_ context.Context, snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snap
	cp.Teams = append([]domain.SnapshotTeam(nil), snap.Teams...)
	m.snapshots[snapKey{snap.LeagueID, snap.Season, snap.Week}] = &cp
	return nil
}

// Season implements SnapshotStore.
func (m *MemoryStore) Season(_ context.Context, leagueID string, season int) ([]*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Snapshot
	for k, snap := range m.snapshots {
		if k.league == leagueID && k.season == season {
			cp := *snap
			cp.Teams = append([]domain.SnapshotTeam(nil), snap.Teams...)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Week < out[b].Week })
	return out, nil
}

// Record implements BacktestStore.
func (m *MemoryStore) Record(_ context.Context, result *domain.BacktestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *result
	m.backtests[btKey{result.LeagueID, result.Season, result.WeekEvaluated, result.Target}] = &cp
	return nil
}

// RecentBySegment implements BacktestStore.
func (m *MemoryStore) RecentBySegment(_ context.Context, segmentKey string, limit int) ([]*domain.BacktestResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.BacktestResult
	for _, r := range m.backtests {
		if r.SegmentKey == segmentKey {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LatestApplied implements ParamsStore.
func (m *MemoryStore) LatestApplied(_ context.Context, classKey string) (*domain.LearnedParams, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hist := m.params[classKey]
	if len(hist) == 0 {
		return nil, ErrNotFound
	}
	cp := *hist[len(hist)-1]
	return &cp, nil
}

// Apply implements ParamsStore.
func (m *MemoryStore) Apply(_ context.Context, params *domain.LearnedParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *params
	m.params[params.Class] = append(m.params[params.Class], &cp)
	return nil
}
