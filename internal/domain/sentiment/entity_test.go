package sentiment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestNewScore_CompositeWeighting(t *testing.T) {
	// 0.50*40 + 0.35*20 + 0.15*10 = 28.5
	score := NewScore("AAPL", 40, 20, 10, 80, TrendRising, 5, 3, testTime)

	assert.InDelta(t, 28.5, score.CompositeScore, 1e-9)
	assert.Equal(t, 40.0, score.FinbertScore)
	assert.Equal(t, 20.0, score.AnalystScore)
	assert.Equal(t, 10.0, score.MomentumScore)
	assert.Equal(t, 80.0, score.Confidence)
	assert.Equal(t, TrendRising, score.Trend)
}

func TestNewScore_ClampsSubScores(t *testing.T) {
	score := NewScore("TSLA", 250, -300, 150, 120, TrendStable, 1, 1, testTime)

	assert.Equal(t, 100.0, score.FinbertScore)
	assert.Equal(t, -100.0, score.AnalystScore)
	assert.Equal(t, 100.0, score.MomentumScore)
	assert.Equal(t, 100.0, score.Confidence)

	// Composite stays within bounds after clamped inputs
	assert.LessOrEqual(t, score.CompositeScore, 100.0)
	assert.GreaterOrEqual(t, score.CompositeScore, -100.0)
}

func TestNewScore_ClampsConfidenceBelowZero(t *testing.T) {
	score := NewScore("MSFT", 0, 0, 0, -10, TrendStable, 0, 0, testTime)
	assert.Equal(t, 0.0, score.Confidence)
}

func TestNewScore_InvalidTrendBecomesStable(t *testing.T) {
	score := NewScore("NVDA", 10, 10, 10, 50, Trend("sideways"), 0, 0, testTime)
	assert.Equal(t, TrendStable, score.Trend)
}

func TestNewScore_NegativeCountsBecomeZero(t *testing.T) {
	score := NewScore("AMD", 0, 0, 0, 50, TrendStable, -3, -1, testTime)
	assert.Equal(t, 0, score.NewsCount)
	assert.Equal(t, 0, score.AnalystCount)
}

func TestDefaultScore(t *testing.T) {
	score := DefaultScore("SPY", testTime)

	assert.Equal(t, "SPY", score.Symbol)
	assert.Equal(t, 0.0, score.CompositeScore)
	assert.Equal(t, 50.0, score.Confidence)
	assert.Equal(t, TrendStable, score.Trend)
	assert.Equal(t, 0, score.NewsCount)
	assert.Equal(t, 0, score.AnalystCount)
	assert.Equal(t, testTime, score.ComputedAt)
}

func TestScore_Value(t *testing.T) {
	score := NewScore("AAPL", 40, 20, 10, 80, TrendRising, 5, 3, testTime)

	tests := []struct {
		name string
		mode ScoringMode
		want float64
	}{
		{"composite", ModeComposite, 28.5},
		{"news only", ModeNewsOnly, 40},
		{"analyst only", ModeAnalystOnly, 20},
		{"momentum", ModeMomentum, 10},
		{"unknown falls back to composite", ScoringMode("bogus"), 28.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, score.Value(tt.mode), 1e-9)
		})
	}
}

func TestTrend_Valid(t *testing.T) {
	for _, trend := range []Trend{TrendAccelerating, TrendRising, TrendStable, TrendFalling, TrendDecelerating} {
		assert.True(t, trend.Valid(), string(trend))
	}
	assert.False(t, Trend("sideways").Valid())
	assert.False(t, Trend("").Valid())
}

func TestScoringMode_Valid(t *testing.T) {
	for _, mode := range []ScoringMode{ModeComposite, ModeNewsOnly, ModeAnalystOnly, ModeMomentum} {
		assert.True(t, mode.Valid(), string(mode))
	}
	assert.False(t, ScoringMode("hybrid").Valid())
	assert.False(t, ScoringMode("").Valid())
}
