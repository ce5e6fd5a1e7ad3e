package sentiment

import (
	"context"
	"time"
)

// Provider computes scores for a set of underlying symbols. Implementations
// are expected to be slow (signal-store queries, upstream NLP feeds); the
// engine calls them only on cache misses, at most once per request.
type Provider interface {
	ComputeFor(ctx context.Context, underlyings []string) ([]Score, error)
}

// NewsSignal is aggregated news-derived sentiment for one symbol,
// pre-scored by the upstream NLP pipeline on a -1..1 scale
type NewsSignal struct {
	Symbol       string  `ch:"symbol"`
	AvgSentiment float64 `ch:"avg_sentiment"`
	ArticleCount uint64  `ch:"article_count"`
}

// AnalystSignal is the analyst-rating consensus for one symbol on a
// -1..1 scale (strong sell .. strong buy)
type AnalystSignal struct {
	Symbol      string  `ch:"symbol"`
	Consensus   float64 `ch:"consensus"`
	RatingCount uint64  `ch:"rating_count"`
}

// MomentumSignal is event-momentum for one symbol: current value and the
// change against the previous window, both on a -1..1 scale
type MomentumSignal struct {
	Symbol string  `ch:"symbol"`
	Value  float64 `ch:"value"`
	Change float64 `ch:"change"`
}

// SignalRepository reads raw per-symbol signals from the signal store
// (ClickHouse). Read-only; ingestion happens upstream.
type SignalRepository interface {
	GetNewsSignals(ctx context.Context, symbols []string, since time.Time) (map[string]NewsSignal, error)
	GetAnalystSignals(ctx context.Context, symbols []string) (map[string]AnalystSignal, error)
	GetMomentumSignals(ctx context.Context, symbols []string, since time.Time) (map[string]MomentumSignal, error)
}
