package catalog

import (
	"context"
	"time"
)

// Repository supplies the instrument universe
type Repository interface {
	// ListActive returns all contracts expiring on or after the given date
	ListActive(ctx context.Context, notBefore time.Time) ([]OptionContract, error)

	// ListByUnderlyings returns active contracts for the given symbols
	ListByUnderlyings(ctx context.Context, underlyings []string, notBefore time.Time) ([]OptionContract, error)
}
