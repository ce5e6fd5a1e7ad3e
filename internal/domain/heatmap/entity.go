package heatmap

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"optionpulse/internal/domain/catalog"
	"optionpulse/internal/domain/sentiment"
	"optionpulse/pkg/errors"
)

// ExpiryBucket is the coarse time-to-expiration classification
type ExpiryBucket string

const (
	BucketAll     ExpiryBucket = "All"
	BucketZeroDTE ExpiryBucket = "0DTE"
	BucketDaily   ExpiryBucket = "Daily"
	BucketWeekly  ExpiryBucket = "Weekly"
	BucketMonthly ExpiryBucket = "Monthly"
	BucketLEAPS   ExpiryBucket = "LEAPS"
)

// Valid reports whether the bucket is a known filter value
func (b ExpiryBucket) Valid() bool {
	switch b {
	case BucketAll, BucketZeroDTE, BucketDaily, BucketWeekly, BucketMonthly, BucketLEAPS:
		return true
	}
	return false
}

// ClassifyExpiry maps a non-negative day count to its expiry bucket.
// Day counts between 46 and 365 have no bucket of their own and fall back
// to Monthly.
func ClassifyExpiry(daysToExpiry int) ExpiryBucket {
	switch {
	case daysToExpiry == 0:
		return BucketZeroDTE
	case daysToExpiry <= 3:
		return BucketDaily
	case daysToExpiry <= 7:
		return BucketWeekly
	case daysToExpiry <= 45:
		return BucketMonthly
	case daysToExpiry > 365:
		return BucketLEAPS
	default:
		return BucketMonthly
	}
}

// Cell is one contract's projection into the heatmap: the selected score
// component plus static contract attributes. Cells are built fresh on every
// aggregation pass and never mutated afterwards.
type Cell struct {
	Underlying     string               `json:"underlying"`
	Strike         decimal.Decimal      `json:"strike"`
	Type           catalog.ContractType `json:"contract_type"`
	ExpirationDate time.Time            `json:"expiration_date"`
	Score          float64              `json:"score"`
	Trend          sentiment.Trend      `json:"trend"`
	Confidence     float64              `json:"confidence"`
	NewsCount      int                  `json:"news_count"`
	AnalystCount   int                  `json:"analyst_count"`
}

// Row groups the cells sharing (underlying, expirationDate). Calls and Puts
// are each strictly ascending by strike.
type Row struct {
	Underlying     string       `json:"underlying"`
	ExpirationDate time.Time    `json:"expiration_date"`
	DaysToExpiry   int          `json:"days_to_expiry"`
	ExpiryBucket   ExpiryBucket `json:"expiry_bucket"`
	Calls          []Cell       `json:"calls"`
	Puts           []Cell       `json:"puts"`
}

// Defined statistics for a result with no surviving cells
const (
	EmptyMinScore = -100.0
	EmptyMaxScore = 100.0
	EmptyAvgScore = 0.0
)

// Result is the aggregated heatmap
type Result struct {
	Rows        []Row        `json:"rows"`
	Underlyings []string     `json:"underlyings"`
	Expirations []time.Time  `json:"expirations"`
	MinScore    float64      `json:"min_score"`
	MaxScore    float64      `json:"max_score"`
	AvgScore    float64      `json:"avg_score"`
	TotalCells  int          `json:"total_cells"`
	ComputedAt  time.Time    `json:"computed_at"`
}

// StrikeRange bounds cell strikes, inclusive on both ends
type StrikeRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Filter is the configuration surface for a heatmap request
type Filter struct {
	Underlyings   []string              `json:"underlyings,omitempty"`
	ExpiryBucket  ExpiryBucket          `json:"expiry_bucket,omitempty"`
	ScoringMode   sentiment.ScoringMode `json:"scoring_mode,omitempty"`
	MinScore      *float64              `json:"min_score,omitempty"`
	MaxScore      *float64              `json:"max_score,omitempty"`
	MinConfidence float64               `json:"min_confidence,omitempty"`
	StrikeRange   *StrikeRange          `json:"strike_range,omitempty"`
}

// Normalized returns a copy with defaults applied and the underlying list
// sorted and deduplicated, so that permutations of the same set behave, and
// fingerprint, identically
func (f Filter) Normalized() Filter {
	out := f

	if out.ExpiryBucket == "" {
		out.ExpiryBucket = BucketAll
	}
	if out.ScoringMode == "" {
		out.ScoringMode = sentiment.ModeComposite
	}

	if len(f.Underlyings) > 0 {
		seen := make(map[string]struct{}, len(f.Underlyings))
		out.Underlyings = make([]string, 0, len(f.Underlyings))
		for _, u := range f.Underlyings {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			out.Underlyings = append(out.Underlyings, u)
		}
		sort.Strings(out.Underlyings)
	}

	return out
}

// Validate rejects filter combinations that cannot match anything.
// Inverted ranges are an error rather than an empty result so that callers
// can distinguish a bad request from an over-tight filter.
func (f Filter) Validate() error {
	if f.ExpiryBucket != "" && !f.ExpiryBucket.Valid() {
		return errors.Wrapf(errors.ErrInvalidFilter, "unknown expiry bucket %q", f.ExpiryBucket)
	}
	if f.ScoringMode != "" && !f.ScoringMode.Valid() {
		return errors.Wrapf(errors.ErrInvalidFilter, "unknown scoring mode %q", f.ScoringMode)
	}
	if f.MinScore != nil && f.MaxScore != nil && *f.MinScore > *f.MaxScore {
		return errors.Wrapf(errors.ErrInvalidFilter, "min score %.2f above max score %.2f", *f.MinScore, *f.MaxScore)
	}
	if f.StrikeRange != nil && f.StrikeRange.Min.GreaterThan(f.StrikeRange.Max) {
		return errors.Wrapf(errors.ErrInvalidFilter, "strike range min %s above max %s", f.StrikeRange.Min, f.StrikeRange.Max)
	}
	return nil
}

// AllowsUnderlying reports whether the underlying passes the allow-list.
// An empty list allows everything.
func (f Filter) AllowsUnderlying(symbol string) bool {
	if len(f.Underlyings) == 0 {
		return true
	}
	for _, u := range f.Underlyings {
		if u == symbol {
			return true
		}
	}
	return false
}
