package heatmap

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionpulse/internal/domain/sentiment"
	"optionpulse/pkg/errors"
)

func TestClassifyExpiry(t *testing.T) {
	tests := []struct {
		days int
		want ExpiryBucket
	}{
		{0, BucketZeroDTE},
		{1, BucketDaily},
		{3, BucketDaily},
		{4, BucketWeekly},
		{7, BucketWeekly},
		{8, BucketMonthly},
		{45, BucketMonthly},
		{46, BucketMonthly}, // no dedicated bucket between 46 and 365
		{200, BucketMonthly},
		{365, BucketMonthly},
		{366, BucketLEAPS},
		{1000, BucketLEAPS},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyExpiry(tt.days), "days=%d", tt.days)
	}
}

func TestExpiryBucket_Valid(t *testing.T) {
	for _, b := range []ExpiryBucket{BucketAll, BucketZeroDTE, BucketDaily, BucketWeekly, BucketMonthly, BucketLEAPS} {
		assert.True(t, b.Valid(), string(b))
	}
	assert.False(t, ExpiryBucket("Quarterly").Valid())
	assert.False(t, ExpiryBucket("").Valid())
}

func TestFilter_Normalized_Defaults(t *testing.T) {
	normalized := Filter{}.Normalized()

	assert.Equal(t, BucketAll, normalized.ExpiryBucket)
	assert.Equal(t, sentiment.ModeComposite, normalized.ScoringMode)
	assert.Empty(t, normalized.Underlyings)
}

func TestFilter_Normalized_SortsAndDedupes(t *testing.T) {
	filter := Filter{Underlyings: []string{"TSLA", "AAPL", "TSLA", "MSFT"}}

	normalized := filter.Normalized()

	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, normalized.Underlyings)
	// Original filter untouched
	assert.Equal(t, []string{"TSLA", "AAPL", "TSLA", "MSFT"}, filter.Underlyings)
}

func TestFilter_Normalized_KeepsExplicitValues(t *testing.T) {
	filter := Filter{ExpiryBucket: BucketWeekly, ScoringMode: sentiment.ModeMomentum}

	normalized := filter.Normalized()

	assert.Equal(t, BucketWeekly, normalized.ExpiryBucket)
	assert.Equal(t, sentiment.ModeMomentum, normalized.ScoringMode)
}

func TestFilter_Validate(t *testing.T) {
	lo, hi := 30.0, -30.0

	tests := []struct {
		name    string
		filter  Filter
		wantErr bool
	}{
		{"empty filter", Filter{}, false},
		{"valid bounds", Filter{MinScore: &hi, MaxScore: &lo}, false},
		{"unknown bucket", Filter{ExpiryBucket: "Quarterly"}, true},
		{"unknown mode", Filter{ScoringMode: "hybrid"}, true},
		{"inverted score range", Filter{MinScore: &lo, MaxScore: &hi}, true},
		{
			"inverted strike range",
			Filter{StrikeRange: &StrikeRange{
				Min: decimal.NewFromInt(200),
				Max: decimal.NewFromInt(100),
			}},
			true,
		},
		{
			"valid strike range",
			Filter{StrikeRange: &StrikeRange{
				Min: decimal.NewFromInt(100),
				Max: decimal.NewFromInt(200),
			}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidFilter))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilter_AllowsUnderlying(t *testing.T) {
	empty := Filter{}
	assert.True(t, empty.AllowsUnderlying("AAPL"))

	scoped := Filter{Underlyings: []string{"AAPL", "TSLA"}}
	assert.True(t, scoped.AllowsUnderlying("AAPL"))
	assert.False(t, scoped.AllowsUnderlying("MSFT"))
}
