package heatmap

import (
	"time"

	"github.com/shopspring/decimal"

	"optionpulse/internal/domain/catalog"
	"optionpulse/internal/domain/sentiment"
)

// ExportRow is one line of the flat tabular projection of a result, for
// non-visual consumers
type ExportRow struct {
	Underlying   string               `json:"underlying"`
	Expiration   time.Time            `json:"expiration"`
	ContractType catalog.ContractType `json:"contract_type"`
	Strike       decimal.Decimal      `json:"strike"`
	Score        float64              `json:"score"`
	Trend        sentiment.Trend      `json:"trend"`
	Confidence   float64              `json:"confidence"`
	NewsCount    int                  `json:"news_count"`
	AnalystCount int                  `json:"analyst_count"`
}

// ExportRows flattens a result into row order: for each heatmap row, its
// calls then its puts, preserving the per-row strike ordering
func ExportRows(result Result) []ExportRow {
	out := make([]ExportRow, 0, result.TotalCells)
	for _, row := range result.Rows {
		for _, cell := range row.Calls {
			out = append(out, exportCell(row, cell))
		}
		for _, cell := range row.Puts {
			out = append(out, exportCell(row, cell))
		}
	}
	return out
}

func exportCell(row Row, cell Cell) ExportRow {
	return ExportRow{
		Underlying:   row.Underlying,
		Expiration:   row.ExpirationDate,
		ContractType: cell.Type,
		Strike:       cell.Strike,
		Score:        cell.Score,
		Trend:        cell.Trend,
		Confidence:   cell.Confidence,
		NewsCount:    cell.NewsCount,
		AnalystCount: cell.AnalystCount,
	}
}
