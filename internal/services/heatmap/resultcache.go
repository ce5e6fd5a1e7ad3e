package heatmap

import (
	"context"
	"time"

	heatmapdomain "optionpulse/internal/domain/heatmap"
	"optionpulse/internal/metrics"
	"optionpulse/pkg/clock"
	"optionpulse/pkg/errors"
	"optionpulse/pkg/logger"
)

const resultKeyPrefix = "heatmap:result:"

// Store is the slice of the cache store the result cache relies on
type Store interface {
	Fetch(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

// cacheEntry pairs a computed result with its absolute expiry instant.
// Freshness is decided against ExpiresAt on the read path, independent of
// the sweep, so sweeping concurrently with reads is safe.
type cacheEntry struct {
	Result    heatmapdomain.Result `json:"result"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// ResultCache stores whole heatmap results keyed by filter fingerprint
type ResultCache struct {
	store Store
	ttl   time.Duration
	clock clock.Clock
	log   *logger.Logger
}

// NewResultCache creates a result cache with the given TTL
func NewResultCache(store Store, clk clock.Clock, ttl time.Duration) *ResultCache {
	return &ResultCache{
		store: store,
		ttl:   ttl,
		clock: clk,
		log:   logger.Get().With("component", "result_cache"),
	}
}

// Get returns the cached result for a fingerprint. Expired entries behave
// exactly like missing ones; store failures degrade to misses.
func (c *ResultCache) Get(ctx context.Context, fingerprint string) (*heatmapdomain.Result, bool) {
	var entry cacheEntry
	found, err := c.store.Fetch(ctx, resultKeyPrefix+fingerprint, &entry)
	if err != nil {
		metrics.CacheOps.WithLabelValues("result", "error").Inc()
		c.log.Warnw("Result cache read failed", "error", err)
		return nil, false
	}
	if !found {
		metrics.CacheOps.WithLabelValues("result", "miss").Inc()
		return nil, false
	}
	if !entry.ExpiresAt.After(c.clock.Now()) {
		metrics.CacheOps.WithLabelValues("result", "expired").Inc()
		return nil, false
	}

	metrics.CacheOps.WithLabelValues("result", "hit").Inc()
	return &entry.Result, true
}

// Set stores a result under its fingerprint. Overwriting an equivalent
// entry written by a concurrent request is harmless; computation is
// idempotent. The store-level TTL is twice the logical TTL so the sweep
// has something to delete while the read path already ignores the entry.
func (c *ResultCache) Set(ctx context.Context, fingerprint string, result heatmapdomain.Result) {
	entry := cacheEntry{
		Result:    result,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	}
	if err := c.store.Set(ctx, resultKeyPrefix+fingerprint, entry, 2*c.ttl); err != nil {
		metrics.CacheOps.WithLabelValues("result", "error").Inc()
		c.log.Warnw("Result cache write failed", "error", err)
		return
	}
	metrics.CacheOps.WithLabelValues("result", "put").Inc()
}

// SweepExpired deletes every entry past its expiry instant and returns the
// number deleted. Fresh entries are untouched, so the sweep can run
// concurrently with reads and writes.
func (c *ResultCache) SweepExpired(ctx context.Context) (int, error) {
	keys, err := c.store.ScanKeys(ctx, resultKeyPrefix+"*")
	if err != nil {
		return 0, errors.Wrap(errors.ErrCacheUnavailable, err.Error())
	}

	now := c.clock.Now()
	deleted := 0
	for _, key := range keys {
		var entry cacheEntry
		found, err := c.store.Fetch(ctx, key, &entry)
		if err != nil {
			c.log.Warnw("Sweep read failed", "key", key, "error", err)
			continue
		}
		if !found {
			continue
		}
		if entry.ExpiresAt.After(now) {
			continue
		}
		if err := c.store.Delete(ctx, key); err != nil {
			c.log.Warnw("Sweep delete failed", "key", key, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		metrics.CacheSweepDeleted.Add(float64(deleted))
		c.log.Infow("Expired results swept", "deleted", deleted, "scanned", len(keys))
	}
	return deleted, nil
}
