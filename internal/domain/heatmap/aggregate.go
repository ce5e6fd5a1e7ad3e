package heatmap

import (
	"sort"
	"time"

	"optionpulse/internal/domain/catalog"
	"optionpulse/pkg/clock"
)

// rowKey identifies one heatmap row. A structured key instead of a joined
// string keeps grouping independent of symbol contents.
type rowKey struct {
	underlying string
	expiration time.Time
}

// Aggregate groups cells into rows by (underlying, expirationDate),
// classifies each row's expiry bucket against "today" derived from now,
// sorts cells and rows, and computes the global statistics. Contracts whose
// expiration is already in the past are stale catalog rows and are skipped.
func Aggregate(cells []Cell, f Filter, now time.Time) Result {
	today := clock.Midnight(now.UTC())

	groups := make(map[rowKey][]Cell)
	for _, cell := range cells {
		key := rowKey{
			underlying: cell.Underlying,
			expiration: clock.Midnight(cell.ExpirationDate.UTC()),
		}
		groups[key] = append(groups[key], cell)
	}

	rows := make([]Row, 0, len(groups))
	for key, group := range groups {
		days := int(key.expiration.Sub(today).Hours() / 24)
		if days < 0 {
			continue
		}

		bucket := ClassifyExpiry(days)
		if f.ExpiryBucket != BucketAll && bucket != f.ExpiryBucket {
			continue
		}

		row := Row{
			Underlying:     key.underlying,
			ExpirationDate: key.expiration,
			DaysToExpiry:   days,
			ExpiryBucket:   bucket,
			Calls:          make([]Cell, 0, len(group)),
			Puts:           make([]Cell, 0, len(group)),
		}
		for _, cell := range group {
			if cell.Type == catalog.Call {
				row.Calls = append(row.Calls, cell)
			} else {
				row.Puts = append(row.Puts, cell)
			}
		}
		if len(row.Calls) == 0 && len(row.Puts) == 0 {
			continue
		}

		sortByStrike(row.Calls)
		sortByStrike(row.Puts)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Underlying != rows[j].Underlying {
			return rows[i].Underlying < rows[j].Underlying
		}
		return rows[i].DaysToExpiry < rows[j].DaysToExpiry
	})

	result := Result{
		Rows:        rows,
		Underlyings: distinctUnderlyings(rows),
		Expirations: distinctExpirations(rows),
		ComputedAt:  now,
	}
	result.MinScore, result.MaxScore, result.AvgScore, result.TotalCells = globalStats(rows)
	return result
}

func sortByStrike(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		return cells[i].Strike.LessThan(cells[j].Strike)
	})
}

func distinctUnderlyings(rows []Row) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, row := range rows {
		if _, ok := seen[row.Underlying]; ok {
			continue
		}
		seen[row.Underlying] = struct{}{}
		out = append(out, row.Underlying)
	}
	sort.Strings(out)
	return out
}

func distinctExpirations(rows []Row) []time.Time {
	seen := make(map[time.Time]struct{})
	out := make([]time.Time, 0)
	for _, row := range rows {
		if _, ok := seen[row.ExpirationDate]; ok {
			continue
		}
		seen[row.ExpirationDate] = struct{}{}
		out = append(out, row.ExpirationDate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// globalStats computes min/max/avg over every surviving cell, calls and
// puts combined. With no cells the defined defaults apply: the full score
// range and a zero average.
func globalStats(rows []Row) (min, max, avg float64, total int) {
	sum := 0.0
	for _, row := range rows {
		for _, cell := range append(append([]Cell{}, row.Calls...), row.Puts...) {
			if total == 0 {
				min, max = cell.Score, cell.Score
			} else {
				if cell.Score < min {
					min = cell.Score
				}
				if cell.Score > max {
					max = cell.Score
				}
			}
			sum += cell.Score
			total++
		}
	}

	if total == 0 {
		return EmptyMinScore, EmptyMaxScore, EmptyAvgScore, 0
	}
	return min, max, sum / float64(total), total
}
