package workers

import (
	"context"
	"time"
)

// Sweeper deletes expired result-cache entries
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// CacheSweeperWorker periodically deletes expired heatmap result entries.
// The read path ignores expired entries on its own; this worker only
// reclaims storage, so a missed run is harmless.
type CacheSweeperWorker struct {
	*BaseWorker
	sweeper Sweeper
}

// NewCacheSweeperWorker creates the cache sweeper
func NewCacheSweeperWorker(sweeper Sweeper, interval time.Duration, enabled bool) *CacheSweeperWorker {
	return &CacheSweeperWorker{
		BaseWorker: NewBaseWorker("cache_sweeper", interval, enabled),
		sweeper:    sweeper,
	}
}

// Run performs one sweep
func (w *CacheSweeperWorker) Run(ctx context.Context) error {
	deleted, err := w.sweeper.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		w.Log().Infow("Sweep completed", "deleted", deleted)
	}
	return nil
}
