package sentiment

import (
	"time"
)

// Composite weighting, fixed across the platform: news-derived sentiment
// carries half the signal, analyst ratings about a third, event momentum
// the remainder.
const (
	finbertWeight  = 0.50
	analystWeight  = 0.35
	momentumWeight = 0.15
)

// Trend describes the direction a symbol's sentiment is moving
type Trend string

const (
	TrendAccelerating Trend = "accelerating"
	TrendRising       Trend = "rising"
	TrendStable       Trend = "stable"
	TrendFalling      Trend = "falling"
	TrendDecelerating Trend = "decelerating"
)

// Valid reports whether the trend is one of the known values
func (t Trend) Valid() bool {
	switch t {
	case TrendAccelerating, TrendRising, TrendStable, TrendFalling, TrendDecelerating:
		return true
	}
	return false
}

// ScoringMode selects which component of a score a heatmap cell carries
type ScoringMode string

const (
	ModeComposite   ScoringMode = "composite"
	ModeNewsOnly    ScoringMode = "newsOnly"
	ModeAnalystOnly ScoringMode = "analystOnly"
	ModeMomentum    ScoringMode = "momentum"
)

// Valid reports whether the mode is one of the known values
func (m ScoringMode) Valid() bool {
	switch m {
	case ModeComposite, ModeNewsOnly, ModeAnalystOnly, ModeMomentum:
		return true
	}
	return false
}

// Score is the computed sentiment for one underlying symbol.
// CompositeScore is always the fixed weighted recombination of the three
// sub-scores; construct scores through NewScore so it is never set
// independently.
type Score struct {
	Symbol         string    `json:"symbol"`
	FinbertScore   float64   `json:"finbert_score"`
	AnalystScore   float64   `json:"analyst_score"`
	MomentumScore  float64   `json:"momentum_score"`
	CompositeScore float64   `json:"composite_score"`
	Confidence     float64   `json:"confidence"`
	Trend          Trend     `json:"trend"`
	NewsCount      int       `json:"news_count"`
	AnalystCount   int       `json:"analyst_count"`
	ComputedAt     time.Time `json:"computed_at"`
}

// NewScore builds a Score from its components. Sub-scores are clamped to
// [-100,100], confidence to [0,100], and the composite is derived.
func NewScore(symbol string, finbert, analyst, momentum, confidence float64, trend Trend, newsCount, analystCount int, computedAt time.Time) Score {
	finbert = clamp(finbert, -100, 100)
	analyst = clamp(analyst, -100, 100)
	momentum = clamp(momentum, -100, 100)

	composite := finbertWeight*finbert + analystWeight*analyst + momentumWeight*momentum

	if !trend.Valid() {
		trend = TrendStable
	}
	if newsCount < 0 {
		newsCount = 0
	}
	if analystCount < 0 {
		analystCount = 0
	}

	return Score{
		Symbol:         symbol,
		FinbertScore:   finbert,
		AnalystScore:   analyst,
		MomentumScore:  momentum,
		CompositeScore: clamp(composite, -100, 100),
		Confidence:     clamp(confidence, 0, 100),
		Trend:          trend,
		NewsCount:      newsCount,
		AnalystCount:   analystCount,
		ComputedAt:     computedAt,
	}
}

// DefaultScore is the neutral placeholder used when no score could be
// computed for a symbol: zero score, mid confidence, stable trend
func DefaultScore(symbol string, at time.Time) Score {
	return NewScore(symbol, 0, 0, 0, 50, TrendStable, 0, 0, at)
}

// Value returns the component selected by mode
func (s Score) Value(mode ScoringMode) float64 {
	switch mode {
	case ModeNewsOnly:
		return s.FinbertScore
	case ModeAnalystOnly:
		return s.AnalystScore
	case ModeMomentum:
		return s.MomentumScore
	default:
		return s.CompositeScore
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
