package heatmap

import (
	"time"

	"optionpulse/internal/domain/catalog"
	"optionpulse/internal/domain/sentiment"
)

// BuildCells projects contracts through the filter pipeline. For each
// contract the score component selected by the filter's mode is carried
// forward; contracts whose underlying has no score get the documented
// defaults instead of being dropped. Gates apply in order: confidence
// floor, score range, strike range. Rejected contracts produce no cell and
// never reach aggregation or the global statistics.
func BuildCells(contracts []catalog.OptionContract, scores map[string]sentiment.Score, f Filter, now time.Time) []Cell {
	cells := make([]Cell, 0, len(contracts))

	for _, contract := range contracts {
		if !f.AllowsUnderlying(contract.Underlying) {
			continue
		}

		score, ok := scores[contract.Underlying]
		if !ok {
			score = sentiment.DefaultScore(contract.Underlying, now)
		}
		value := score.Value(f.ScoringMode)

		if score.Confidence < f.MinConfidence {
			continue
		}
		if f.MinScore != nil && value < *f.MinScore {
			continue
		}
		if f.MaxScore != nil && value > *f.MaxScore {
			continue
		}
		if f.StrikeRange != nil &&
			(contract.Strike.LessThan(f.StrikeRange.Min) || contract.Strike.GreaterThan(f.StrikeRange.Max)) {
			continue
		}

		cells = append(cells, Cell{
			Underlying:     contract.Underlying,
			Strike:         contract.Strike,
			Type:           contract.Type,
			ExpirationDate: contract.ExpirationDate,
			Score:          value,
			Trend:          score.Trend,
			Confidence:     score.Confidence,
			NewsCount:      score.NewsCount,
			AnalystCount:   score.AnalystCount,
		})
	}

	return cells
}
