// Package rediscache wraps a SnapshotStore with a redis read-through
// cache. Previous-week lookups dominate snapshot reads during batch
// ranking, and they are immutable once the week closes, so they cache
// well. Cache failures degrade to the underlying store, never to an error.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/persistence"
)

// DefaultTTL keeps closed weeks cached for a day; a stale current week is
// dropped explicitly via Invalidate.
const DefaultTTL = 24 * time.Hour

// SnapshotCache is a caching SnapshotStore decorator.
type SnapshotCache struct {
	inner persistence.SnapshotStore
	rdb   redis.Cmdable
	ttl   time.Duration
	log   zerolog.Logger
}

// New wraps inner with a redis cache.
func New(inner persistence.SnapshotStore, rdb redis.Cmdable, ttl time.Duration, logger zerolog.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SnapshotCache{inner: inner, rdb: rdb, ttl: ttl, log: logger}
}

func key(leagueID string, season, week int) string {
	return fmt.Sprintf("snap:%s:%d:%d", leagueID, season, week)
}

// Get serves from redis when possible, falling through to the store and
// populating the cache on a miss.
func (c *SnapshotCache) Get(ctx context.Context, leagueID string, season, week int) (*domain.Snapshot, error) {
	k := key(leagueID, season, week)

	payload, err := c.rdb.Get(ctx, k).Bytes()
	if err == nil {
		var snap domain.Snapshot
		if jsonErr := json.Unmarshal(payload, &snap); jsonErr == nil {
			return &snap, nil
		}
		// Corrupt entry: drop it and fall through.
		c.rdb.Del(ctx, k)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("key", k).Msg("snapshot cache read failed")
	}

	snap, err := c.inner.Get(ctx, leagueID, season, week)
	if err != nil {
		return nil, err
	}
	c.populate(ctx, k, snap)
	return snap, nil
}

// Upsert writes through and refreshes the cached entry.
func (c *SnapshotCache) Upsert(ctx context.Context, snap *domain.Snapshot) error {
	if err := c.inner.Upsert(ctx, snap); err != nil {
		return err
	}
	c.populate(ctx, key(snap.LeagueID, snap.Season, snap.Week), snap)
	return nil
}

// Season bypasses the cache; range replays are infrequent and want the
// durable truth.
func (c *SnapshotCache) Season(ctx context.Context, leagueID string, season int) ([]*domain.Snapshot, error) {
	return c.inner.Season(ctx, leagueID, season)
}

// Invalidate drops one league-week, used when a current week was ranked on
// stale inputs and must be recomputed.
func (c *SnapshotCache) Invalidate(ctx context.Context, leagueID string, season, week int) error {
	if err := c.rdb.Del(ctx, key(leagueID, season, week)).Err(); err != nil {
		return fmt.Errorf("invalidate snapshot cache: %w", err)
	}
	return nil
}

func (c *SnapshotCache) populate(ctx context.Context, k string, snap *domain.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, k, payload, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", k).Msg("snapshot cache write failed")
	}
}
