package scoring

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"optionpulse/internal/domain/sentiment"
	"optionpulse/internal/metrics"
	"optionpulse/pkg/clock"
	"optionpulse/pkg/errors"
	"optionpulse/pkg/logger"
)

// ProviderConfig controls the signal-backed score provider
type ProviderConfig struct {
	// SignalLookback bounds how far back news and momentum signals are read
	SignalLookback time.Duration

	// RequestsPerMinute rate-limits signal-store access; the store is
	// shared with the ingestion pipeline and must not be hammered
	RequestsPerMinute int
}

// DefaultProviderConfig returns production defaults
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		SignalLookback:    24 * time.Hour,
		RequestsPerMinute: 120,
	}
}

// Compile-time check
var _ sentiment.Provider = (*Provider)(nil)

// Provider computes sentiment scores by composing raw signals from the
// signal store. Expensive relative to the caches; the engine only calls it
// on score-cache misses.
type Provider struct {
	signals sentiment.SignalRepository
	limiter *rate.Limiter
	clock   clock.Clock
	cfg     ProviderConfig
	log     *logger.Logger
}

// NewProvider constructs a signal-backed provider
func NewProvider(signals sentiment.SignalRepository, clk clock.Clock, cfg ProviderConfig) *Provider {
	rps := float64(cfg.RequestsPerMinute) / 60.0
	burst := cfg.RequestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Provider{
		signals: signals,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		clock:   clk,
		cfg:     cfg,
		log:     logger.Get().With("component", "score_provider"),
	}
}

// ComputeFor computes a score for every requested underlying. Individual
// signal sources that fail are skipped with a warning; the call only errors
// when no source could be read at all.
func (p *Provider) ComputeFor(ctx context.Context, underlyings []string) ([]sentiment.Score, error) {
	if len(underlyings) == 0 {
		return nil, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "provider rate limiter")
	}

	start := time.Now()
	now := p.clock.Now()
	since := now.Add(-p.cfg.SignalLookback)

	sources := 0

	news, err := p.signals.GetNewsSignals(ctx, underlyings, since)
	if err != nil {
		p.log.Warnw("News signals unavailable", "error", err)
		news = nil
	} else {
		sources++
	}

	analysts, err := p.signals.GetAnalystSignals(ctx, underlyings)
	if err != nil {
		p.log.Warnw("Analyst signals unavailable", "error", err)
		analysts = nil
	} else {
		sources++
	}

	momentum, err := p.signals.GetMomentumSignals(ctx, underlyings, since)
	if err != nil {
		p.log.Warnw("Momentum signals unavailable", "error", err)
		momentum = nil
	} else {
		sources++
	}

	metrics.ProviderDuration.Observe(time.Since(start).Seconds())

	if sources == 0 {
		metrics.ProviderRequests.WithLabelValues("error").Inc()
		return nil, errors.Wrap(errors.ErrProviderUnavailable, "all signal sources failed")
	}
	if sources < 3 {
		metrics.ProviderRequests.WithLabelValues("degraded").Inc()
	} else {
		metrics.ProviderRequests.WithLabelValues("success").Inc()
	}

	scores := make([]sentiment.Score, 0, len(underlyings))
	for _, symbol := range underlyings {
		scores = append(scores, p.compose(symbol, news[symbol], analysts[symbol], momentum[symbol], now))
	}

	p.log.Debugw("Scores computed",
		"symbols", len(underlyings),
		"sources", sources,
		"duration", time.Since(start),
	)

	return scores, nil
}

// compose scales the -1..1 raw signals onto the -100..100 score range and
// derives confidence from signal coverage
func (p *Provider) compose(symbol string, news sentiment.NewsSignal, analyst sentiment.AnalystSignal, momentum sentiment.MomentumSignal, now time.Time) sentiment.Score {
	finbert := news.AvgSentiment * 100
	analystScore := analyst.Consensus * 100
	momentumScore := momentum.Value * 100

	confidence := 50.0
	if news.ArticleCount > 0 {
		confidence += minFloat(20, float64(news.ArticleCount)*2)
	}
	if analyst.RatingCount > 0 {
		confidence += minFloat(20, float64(analyst.RatingCount)*4)
	}
	if momentum.Value != 0 || momentum.Change != 0 {
		confidence += 10
	}

	return sentiment.NewScore(
		symbol,
		finbert,
		analystScore,
		momentumScore,
		confidence,
		classifyTrend(momentum.Change),
		int(news.ArticleCount),
		int(analyst.RatingCount),
		now,
	)
}

// classifyTrend maps the momentum change over the lookback window to a
// trend label
func classifyTrend(change float64) sentiment.Trend {
	switch {
	case change > 0.25:
		return sentiment.TrendAccelerating
	case change > 0.05:
		return sentiment.TrendRising
	case change < -0.25:
		return sentiment.TrendDecelerating
	case change < -0.05:
		return sentiment.TrendFalling
	default:
		return sentiment.TrendStable
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
