package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"optionpulse/internal/domain/catalog"
	"optionpulse/pkg/errors"
)

// Compile-time check
var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository using PostgreSQL
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListActive returns all contracts expiring on or after notBefore
func (r *CatalogRepository) ListActive(ctx context.Context, notBefore time.Time) ([]catalog.OptionContract, error) {
	var contracts []catalog.OptionContract

	query := `
		SELECT id, underlying, strike, contract_type, expiration_date,
		       volume, open_interest, implied_vol
		FROM option_contracts
		WHERE expiration_date >= $1
		ORDER BY underlying, expiration_date, strike`

	if err := r.db.SelectContext(ctx, &contracts, query, notBefore); err != nil {
		return nil, errors.Wrapf(errors.ErrCatalogUnavailable, "list active contracts: %v", err)
	}
	return contracts, nil
}

// ListByUnderlyings returns active contracts for the given symbols
func (r *CatalogRepository) ListByUnderlyings(ctx context.Context, underlyings []string, notBefore time.Time) ([]catalog.OptionContract, error) {
	if len(underlyings) == 0 {
		return r.ListActive(ctx, notBefore)
	}

	var contracts []catalog.OptionContract

	query := `
		SELECT id, underlying, strike, contract_type, expiration_date,
		       volume, open_interest, implied_vol
		FROM option_contracts
		WHERE underlying = ANY($1) AND expiration_date >= $2
		ORDER BY underlying, expiration_date, strike`

	if err := r.db.SelectContext(ctx, &contracts, query, pq.Array(underlyings), notBefore); err != nil {
		return nil, errors.Wrapf(errors.ErrCatalogUnavailable, "list contracts by underlying: %v", err)
	}
	return contracts, nil
}
