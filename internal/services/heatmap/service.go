package heatmap

import (
	"context"
	"time"

	"github.com/google/uuid"

	"optionpulse/internal/domain/catalog"
	heatmapdomain "optionpulse/internal/domain/heatmap"
	"optionpulse/internal/domain/sentiment"
	"optionpulse/internal/metrics"
	"optionpulse/pkg/clock"
	"optionpulse/pkg/logger"
)

// ScoreSource is the per-symbol score cache the engine reads through
type ScoreSource interface {
	Get(ctx context.Context, symbols []string) map[string]sentiment.Score
	Put(ctx context.Context, scores []sentiment.Score)
}

// ResultStore is the whole-result cache the engine reads through
type ResultStore interface {
	Get(ctx context.Context, fingerprint string) (*heatmapdomain.Result, bool)
	Set(ctx context.Context, fingerprint string, result heatmapdomain.Result)
	SweepExpired(ctx context.Context) (int, error)
}

// Service is the heatmap engine: one sequential pipeline per request, no
// state beyond its injected collaborators. Results and cells are owned by
// the computation that produced them and never mutated afterwards.
type Service struct {
	clock    clock.Clock
	scores   ScoreSource
	provider sentiment.Provider
	results  ResultStore
	log      *logger.Logger
}

// NewService constructs the engine with explicit dependencies
func NewService(clk clock.Clock, scores ScoreSource, provider sentiment.Provider, results ResultStore) *Service {
	return &Service{
		clock:    clk,
		scores:   scores,
		provider: provider,
		results:  results,
		log:      logger.Get().With("component", "heatmap_service"),
	}
}

// GetHeatmap resolves the filter against the result cache and, on a miss,
// runs the scoring, filtering and aggregation pipeline and caches the
// outcome. Provider failures degrade to default scores; cache failures
// degrade to fresh computation. The only hard failure is an invalid filter.
func (s *Service) GetHeatmap(ctx context.Context, contracts []catalog.OptionContract, filter heatmapdomain.Filter) (*heatmapdomain.Result, error) {
	filter = filter.Normalized()
	if err := filter.Validate(); err != nil {
		metrics.HeatmapRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}

	fingerprint := filter.Fingerprint()
	if cached, ok := s.results.Get(ctx, fingerprint); ok {
		metrics.HeatmapRequests.WithLabelValues("cached").Inc()
		return cached, nil
	}

	start := time.Now()
	requestID := uuid.New()
	now := s.clock.Now()

	symbols := requestedSymbols(contracts, filter)
	scores := s.scores.Get(ctx, symbols)

	missing := missingSymbols(symbols, scores)
	if len(missing) > 0 {
		computed, err := s.provider.ComputeFor(ctx, missing)
		if err != nil {
			// Degrade: absent scores become documented defaults during
			// cell construction, the request itself still succeeds
			s.log.Warnw("Provider failed, using default scores",
				"request_id", requestID,
				"symbols", len(missing),
				"error", err,
			)
		} else {
			s.scores.Put(ctx, computed)
			for _, score := range computed {
				scores[score.Symbol] = score
			}
		}
	}

	cells := heatmapdomain.BuildCells(contracts, scores, filter, now)
	result := heatmapdomain.Aggregate(cells, filter, now)

	s.results.Set(ctx, fingerprint, result)

	metrics.HeatmapRequests.WithLabelValues("computed").Inc()
	metrics.HeatmapComputeDuration.Observe(time.Since(start).Seconds())
	metrics.HeatmapCells.Observe(float64(result.TotalCells))

	s.log.Debugw("Heatmap computed",
		"request_id", requestID,
		"contracts", len(contracts),
		"rows", len(result.Rows),
		"cells", result.TotalCells,
		"duration", time.Since(start),
	)

	return &result, nil
}

// ExportRows flattens a result for tabular consumers
func (s *Service) ExportRows(result *heatmapdomain.Result) []heatmapdomain.ExportRow {
	if result == nil {
		return nil
	}
	return heatmapdomain.ExportRows(*result)
}

// SweepExpired deletes expired result-cache entries; safe to call on a
// schedule or on demand, concurrently with requests
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	return s.results.SweepExpired(ctx)
}

// requestedSymbols returns the distinct underlyings of the contracts that
// pass the filter's allow-list, preserving first-seen order
func requestedSymbols(contracts []catalog.OptionContract, filter heatmapdomain.Filter) []string {
	seen := make(map[string]struct{})
	symbols := make([]string, 0)
	for _, contract := range contracts {
		if !filter.AllowsUnderlying(contract.Underlying) {
			continue
		}
		if _, ok := seen[contract.Underlying]; ok {
			continue
		}
		seen[contract.Underlying] = struct{}{}
		symbols = append(symbols, contract.Underlying)
	}
	return symbols
}

func missingSymbols(symbols []string, scores map[string]sentiment.Score) []string {
	missing := make([]string, 0)
	for _, symbol := range symbols {
		if _, ok := scores[symbol]; !ok {
			missing = append(missing, symbol)
		}
	}
	return missing
}
