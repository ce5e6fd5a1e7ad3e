package heatmap

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	heatmapdomain "optionpulse/internal/domain/heatmap"
	"optionpulse/pkg/clock"
	"optionpulse/pkg/errors"
)

// fakeStore is an in-memory Store for tests
type fakeStore struct {
	data     map[string][]byte
	failGet  bool
	failSet  bool
	failScan bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Fetch(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.failGet {
		return false, errors.New("store down")
	}
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (s *fakeStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.failSet {
		return errors.New("store down")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *fakeStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	if s.failScan {
		return nil, errors.New("store down")
	}
	prefix := strings.TrimSuffix(pattern, "*")
	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

var cacheNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func sampleResult(total int) heatmapdomain.Result {
	return heatmapdomain.Result{
		MinScore:   -10,
		MaxScore:   30,
		AvgScore:   5,
		TotalCells: total,
		ComputedAt: cacheNow,
	}
}

func TestResultCache_RoundTrip(t *testing.T) {
	store := newFakeStore()
	cache := NewResultCache(store, clock.NewFixed(cacheNow), 2*time.Minute)

	cache.Set(context.Background(), "fp1", sampleResult(3))

	cached, ok := cache.Get(context.Background(), "fp1")
	require.True(t, ok)
	assert.Equal(t, 3, cached.TotalCells)
	assert.Equal(t, 30.0, cached.MaxScore)
}

func TestResultCache_MissForUnknownFingerprint(t *testing.T) {
	cache := NewResultCache(newFakeStore(), clock.NewFixed(cacheNow), 2*time.Minute)

	cached, ok := cache.Get(context.Background(), "unknown")
	assert.False(t, ok)
	assert.Nil(t, cached)
}

func TestResultCache_ExpiredBehavesAsMissing(t *testing.T) {
	store := newFakeStore()
	ttl := 2 * time.Minute

	writer := NewResultCache(store, clock.NewFixed(cacheNow), ttl)
	writer.Set(context.Background(), "fp1", sampleResult(3))

	// Same store, read past the TTL
	reader := NewResultCache(store, clock.NewFixed(cacheNow.Add(ttl+time.Second)), ttl)
	cached, ok := reader.Get(context.Background(), "fp1")
	assert.False(t, ok)
	assert.Nil(t, cached)
}

func TestResultCache_StoreFailuresDegradeToMisses(t *testing.T) {
	store := newFakeStore()
	store.failGet = true
	cache := NewResultCache(store, clock.NewFixed(cacheNow), 2*time.Minute)

	_, ok := cache.Get(context.Background(), "fp1")
	assert.False(t, ok)
}

func TestResultCache_SweepDeletesOnlyExpired(t *testing.T) {
	store := newFakeStore()
	ttl := 2 * time.Minute

	writer := NewResultCache(store, clock.NewFixed(cacheNow), ttl)
	writer.Set(context.Background(), "old", sampleResult(1))

	lateWriter := NewResultCache(store, clock.NewFixed(cacheNow.Add(ttl)), ttl)
	lateWriter.Set(context.Background(), "fresh", sampleResult(2))

	// Sweep at a moment where "old" is expired but "fresh" is not
	sweeper := NewResultCache(store, clock.NewFixed(cacheNow.Add(ttl+time.Second)), ttl)
	deleted, err := sweeper.SweepExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, ok := sweeper.Get(context.Background(), "fresh")
	assert.True(t, ok)
	_, ok = sweeper.Get(context.Background(), "old")
	assert.False(t, ok)
}

func TestResultCache_SweepEmptyCache(t *testing.T) {
	cache := NewResultCache(newFakeStore(), clock.NewFixed(cacheNow), 2*time.Minute)

	deleted, err := cache.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestResultCache_SweepScanFailure(t *testing.T) {
	store := newFakeStore()
	store.failScan = true
	cache := NewResultCache(store, clock.NewFixed(cacheNow), 2*time.Minute)

	_, err := cache.SweepExpired(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCacheUnavailable))
}
