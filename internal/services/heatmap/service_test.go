package heatmap

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionpulse/internal/domain/catalog"
	heatmapdomain "optionpulse/internal/domain/heatmap"
	"optionpulse/internal/domain/sentiment"
	"optionpulse/pkg/clock"
	"optionpulse/pkg/errors"
)

// fakeScoreSource is an in-memory ScoreSource recording puts
type fakeScoreSource struct {
	scores map[string]sentiment.Score
	puts   [][]sentiment.Score
}

func newFakeScoreSource(scores ...sentiment.Score) *fakeScoreSource {
	out := &fakeScoreSource{scores: make(map[string]sentiment.Score)}
	for _, s := range scores {
		out.scores[s.Symbol] = s
	}
	return out
}

func (f *fakeScoreSource) Get(ctx context.Context, symbols []string) map[string]sentiment.Score {
	fresh := make(map[string]sentiment.Score)
	for _, symbol := range symbols {
		if score, ok := f.scores[symbol]; ok {
			fresh[symbol] = score
		}
	}
	return fresh
}

func (f *fakeScoreSource) Put(ctx context.Context, scores []sentiment.Score) {
	f.puts = append(f.puts, scores)
	for _, s := range scores {
		f.scores[s.Symbol] = s
	}
}

// fakeProvider returns canned scores and records requested symbols
type fakeProvider struct {
	scores map[string]sentiment.Score
	err    error
	calls  [][]string
}

func (f *fakeProvider) ComputeFor(ctx context.Context, underlyings []string) ([]sentiment.Score, error) {
	f.calls = append(f.calls, underlyings)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]sentiment.Score, 0, len(underlyings))
	for _, symbol := range underlyings {
		if score, ok := f.scores[symbol]; ok {
			out = append(out, score)
		}
	}
	return out, nil
}

// fakeResultStore is an in-memory ResultStore
type fakeResultStore struct {
	results map[string]heatmapdomain.Result
	sets    int
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: make(map[string]heatmapdomain.Result)}
}

func (f *fakeResultStore) Get(ctx context.Context, fingerprint string) (*heatmapdomain.Result, bool) {
	result, ok := f.results[fingerprint]
	if !ok {
		return nil, false
	}
	return &result, true
}

func (f *fakeResultStore) Set(ctx context.Context, fingerprint string, result heatmapdomain.Result) {
	f.sets++
	f.results[fingerprint] = result
}

func (f *fakeResultStore) SweepExpired(ctx context.Context) (int, error) {
	count := len(f.results)
	f.results = make(map[string]heatmapdomain.Result)
	return count, nil
}

var serviceNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func serviceContract(underlying string, strike float64, typ catalog.ContractType, daysOut int) catalog.OptionContract {
	return catalog.OptionContract{
		ID:             uuid.New(),
		Underlying:     underlying,
		Strike:         decimal.NewFromFloat(strike),
		Type:           typ,
		ExpirationDate: serviceNow.AddDate(0, 0, daysOut),
	}
}

func TestService_InvalidFilterRejected(t *testing.T) {
	svc := NewService(clock.NewFixed(serviceNow), newFakeScoreSource(), &fakeProvider{}, newFakeResultStore())

	lo, hi := 50.0, -50.0
	_, err := svc.GetHeatmap(context.Background(), nil, heatmapdomain.Filter{MinScore: &lo, MaxScore: &hi})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidFilter))
}

func TestService_ComputesAndCachesOnMiss(t *testing.T) {
	provider := &fakeProvider{scores: map[string]sentiment.Score{
		"AAPL": sentiment.NewScore("AAPL", 40, 20, 10, 80, sentiment.TrendRising, 5, 3, serviceNow),
	}}
	scores := newFakeScoreSource()
	results := newFakeResultStore()
	svc := NewService(clock.NewFixed(serviceNow), scores, provider, results)

	contracts := []catalog.OptionContract{
		serviceContract("AAPL", 180, catalog.Call, 7),
		serviceContract("AAPL", 175, catalog.Put, 7),
	}

	result, err := svc.GetHeatmap(context.Background(), contracts, heatmapdomain.Filter{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCells)
	require.Len(t, result.Rows, 1)
	assert.InDelta(t, 28.5, result.Rows[0].Calls[0].Score, 1e-9)

	// Computed scores were cached and the result was stored
	require.Len(t, provider.calls, 1)
	assert.Equal(t, []string{"AAPL"}, provider.calls[0])
	require.Len(t, scores.puts, 1)
	assert.Equal(t, 1, results.sets)
}

func TestService_CacheHitSkipsComputation(t *testing.T) {
	provider := &fakeProvider{scores: map[string]sentiment.Score{
		"AAPL": sentiment.NewScore("AAPL", 40, 20, 10, 80, sentiment.TrendRising, 5, 3, serviceNow),
	}}
	results := newFakeResultStore()
	svc := NewService(clock.NewFixed(serviceNow), newFakeScoreSource(), provider, results)

	contracts := []catalog.OptionContract{serviceContract("AAPL", 180, catalog.Call, 7)}

	first, err := svc.GetHeatmap(context.Background(), contracts, heatmapdomain.Filter{})
	require.NoError(t, err)

	second, err := svc.GetHeatmap(context.Background(), contracts, heatmapdomain.Filter{})
	require.NoError(t, err)

	// Same filter twice: one provider call, one store write, identical payloads
	assert.Len(t, provider.calls, 1)
	assert.Equal(t, 1, results.sets)
	assert.Equal(t, first.TotalCells, second.TotalCells)
	assert.Equal(t, first.MinScore, second.MinScore)
	assert.Equal(t, first.ComputedAt, second.ComputedAt)
}

func TestService_FreshScoresSkipProvider(t *testing.T) {
	cached := sentiment.NewScore("AAPL", 40, 20, 10, 80, sentiment.TrendRising, 5, 3, serviceNow)
	provider := &fakeProvider{}
	svc := NewService(clock.NewFixed(serviceNow), newFakeScoreSource(cached), provider, newFakeResultStore())

	contracts := []catalog.OptionContract{serviceContract("AAPL", 180, catalog.Call, 7)}

	result, err := svc.GetHeatmap(context.Background(), contracts, heatmapdomain.Filter{})

	require.NoError(t, err)
	assert.Empty(t, provider.calls)
	assert.InDelta(t, 28.5, result.Rows[0].Calls[0].Score, 1e-9)
}

func TestService_ProviderFailureDegradesToDefaults(t *testing.T) {
	provider := &fakeProvider{err: errors.Wrap(errors.ErrProviderUnavailable, "all signal sources failed")}
	svc := NewService(clock.NewFixed(serviceNow), newFakeScoreSource(), provider, newFakeResultStore())

	contracts := []catalog.OptionContract{serviceContract("AAPL", 180, catalog.Call, 7)}

	result, err := svc.GetHeatmap(context.Background(), contracts, heatmapdomain.Filter{})

	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	cell := result.Rows[0].Calls[0]
	assert.Equal(t, 0.0, cell.Score)
	assert.Equal(t, 50.0, cell.Confidence)
	assert.Equal(t, sentiment.TrendStable, cell.Trend)
}

func TestService_OnlyMissingSymbolsComputed(t *testing.T) {
	cached := sentiment.NewScore("AAPL", 40, 20, 10, 80, sentiment.TrendRising, 5, 3, serviceNow)
	provider := &fakeProvider{scores: map[string]sentiment.Score{
		"TSLA": sentiment.NewScore("TSLA", -30, -10, 0, 70, sentiment.TrendFalling, 4, 2, serviceNow),
	}}
	svc := NewService(clock.NewFixed(serviceNow), newFakeScoreSource(cached), provider, newFakeResultStore())

	contracts := []catalog.OptionContract{
		serviceContract("AAPL", 180, catalog.Call, 7),
		serviceContract("TSLA", 250, catalog.Call, 7),
	}

	result, err := svc.GetHeatmap(context.Background(), contracts, heatmapdomain.Filter{})

	require.NoError(t, err)
	require.Len(t, provider.calls, 1)
	assert.Equal(t, []string{"TSLA"}, provider.calls[0])
	assert.Equal(t, []string{"AAPL", "TSLA"}, result.Underlyings)
}

func TestService_FilterAllowListLimitsProviderRequests(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(clock.NewFixed(serviceNow), newFakeScoreSource(), provider, newFakeResultStore())

	contracts := []catalog.OptionContract{
		serviceContract("AAPL", 180, catalog.Call, 7),
		serviceContract("TSLA", 250, catalog.Call, 7),
	}

	_, err := svc.GetHeatmap(context.Background(), contracts, heatmapdomain.Filter{Underlyings: []string{"TSLA"}})

	require.NoError(t, err)
	require.Len(t, provider.calls, 1)
	assert.Equal(t, []string{"TSLA"}, provider.calls[0])
}

func TestService_ExportRows(t *testing.T) {
	svc := NewService(clock.NewFixed(serviceNow), newFakeScoreSource(), &fakeProvider{}, newFakeResultStore())

	contracts := []catalog.OptionContract{
		serviceContract("AAPL", 180, catalog.Call, 7),
		serviceContract("AAPL", 175, catalog.Put, 7),
	}

	result, err := svc.GetHeatmap(context.Background(), contracts, heatmapdomain.Filter{})
	require.NoError(t, err)

	rows := svc.ExportRows(result)
	require.Len(t, rows, 2)
	assert.Equal(t, catalog.Call, rows[0].ContractType)
	assert.Equal(t, catalog.Put, rows[1].ContractType)

	assert.Nil(t, svc.ExportRows(nil))
}

func TestService_SweepExpiredDelegates(t *testing.T) {
	results := newFakeResultStore()
	svc := NewService(clock.NewFixed(serviceNow), newFakeScoreSource(), &fakeProvider{}, results)

	contracts := []catalog.OptionContract{serviceContract("AAPL", 180, catalog.Call, 7)}
	_, err := svc.GetHeatmap(context.Background(), contracts, heatmapdomain.Filter{})
	require.NoError(t, err)

	deleted, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
