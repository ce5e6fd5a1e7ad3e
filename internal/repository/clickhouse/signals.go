package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"optionpulse/internal/domain/sentiment"
)

// Compile-time check
var _ sentiment.SignalRepository = (*SignalRepository)(nil)

// SignalRepository reads raw per-symbol signals from ClickHouse. The news,
// analyst_ratings and momentum tables are populated by the ingestion
// pipeline; this repository only aggregates them.
type SignalRepository struct {
	conn driver.Conn
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(conn driver.Conn) *SignalRepository {
	return &SignalRepository{conn: conn}
}

// GetNewsSignals returns average news sentiment and article counts per
// symbol since the given time
func (r *SignalRepository) GetNewsSignals(ctx context.Context, symbols []string, since time.Time) (map[string]sentiment.NewsSignal, error) {
	var rows []sentiment.NewsSignal

	query := `
		SELECT
			symbol,
			avg(sentiment) AS avg_sentiment,
			count() AS article_count
		FROM news
		ARRAY JOIN symbols AS symbol
		WHERE symbol IN $1 AND published_at >= $2
		GROUP BY symbol`

	if err := r.conn.Select(ctx, &rows, query, symbols, since); err != nil {
		return nil, err
	}

	out := make(map[string]sentiment.NewsSignal, len(rows))
	for _, row := range rows {
		out[row.Symbol] = row
	}
	return out, nil
}

// GetAnalystSignals returns the latest analyst consensus per symbol
func (r *SignalRepository) GetAnalystSignals(ctx context.Context, symbols []string) (map[string]sentiment.AnalystSignal, error) {
	var rows []sentiment.AnalystSignal

	query := `
		SELECT
			symbol,
			argMax(consensus, updated_at) AS consensus,
			max(rating_count) AS rating_count
		FROM analyst_ratings
		WHERE symbol IN $1
		GROUP BY symbol`

	if err := r.conn.Select(ctx, &rows, query, symbols); err != nil {
		return nil, err
	}

	out := make(map[string]sentiment.AnalystSignal, len(rows))
	for _, row := range rows {
		out[row.Symbol] = row
	}
	return out, nil
}

// GetMomentumSignals returns the current momentum value and its change
// against the previous window per symbol
func (r *SignalRepository) GetMomentumSignals(ctx context.Context, symbols []string, since time.Time) (map[string]sentiment.MomentumSignal, error) {
	var rows []sentiment.MomentumSignal

	query := `
		SELECT
			symbol,
			argMax(value, observed_at) AS value,
			argMax(value, observed_at) - argMin(value, observed_at) AS change
		FROM momentum
		WHERE symbol IN $1 AND observed_at >= $2
		GROUP BY symbol`

	if err := r.conn.Select(ctx, &rows, query, symbols, since); err != nil {
		return nil, err
	}

	out := make(map[string]sentiment.MomentumSignal, len(rows))
	for _, row := range rows {
		out[row.Symbol] = row
	}
	return out, nil
}
