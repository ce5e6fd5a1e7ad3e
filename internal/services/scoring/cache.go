package scoring

import (
	"context"
	"time"

	"optionpulse/internal/domain/sentiment"
	"optionpulse/internal/metrics"
	"optionpulse/pkg/clock"
	"optionpulse/pkg/logger"
)

const scoreKeyPrefix = "sentiment:score:"

// Store is the slice of the cache store the score cache relies on
type Store interface {
	Fetch(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ScoreCache holds computed per-symbol scores for the freshness window.
// Store failures are logged and degrade to misses; callers recompute and
// must never see an error from the cache.
type ScoreCache struct {
	store  Store
	window time.Duration
	clock  clock.Clock
	log    *logger.Logger
}

// NewScoreCache creates a score cache with the given freshness window
func NewScoreCache(store Store, clk clock.Clock, window time.Duration) *ScoreCache {
	return &ScoreCache{
		store:  store,
		window: window,
		clock:  clk,
		log:    logger.Get().With("component", "score_cache"),
	}
}

// Get returns the fresh scores among the requested symbols. Entries older
// than the freshness window are treated as absent; iteration order of the
// returned map carries no meaning.
func (c *ScoreCache) Get(ctx context.Context, symbols []string) map[string]sentiment.Score {
	now := c.clock.Now()
	fresh := make(map[string]sentiment.Score, len(symbols))

	for _, symbol := range symbols {
		var score sentiment.Score
		found, err := c.store.Fetch(ctx, scoreKeyPrefix+symbol, &score)
		if err != nil {
			metrics.CacheOps.WithLabelValues("score", "error").Inc()
			c.log.Warnw("Score cache read failed", "symbol", symbol, "error", err)
			continue
		}
		if !found {
			metrics.CacheOps.WithLabelValues("score", "miss").Inc()
			continue
		}
		if now.Sub(score.ComputedAt) > c.window {
			metrics.CacheOps.WithLabelValues("score", "expired").Inc()
			continue
		}

		metrics.CacheOps.WithLabelValues("score", "hit").Inc()
		fresh[symbol] = score
	}

	return fresh
}

// Put upserts scores, overwriting by symbol. The store-level TTL is twice
// the freshness window; the read path enforces the window itself, the TTL
// only reclaims storage.
func (c *ScoreCache) Put(ctx context.Context, scores []sentiment.Score) {
	for _, score := range scores {
		if err := c.store.Set(ctx, scoreKeyPrefix+score.Symbol, score, 2*c.window); err != nil {
			metrics.CacheOps.WithLabelValues("score", "error").Inc()
			c.log.Warnw("Score cache write failed", "symbol", score.Symbol, "error", err)
			continue
		}
		metrics.CacheOps.WithLabelValues("score", "put").Inc()
	}
}
