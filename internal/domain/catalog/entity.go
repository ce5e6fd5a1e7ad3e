package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractType distinguishes calls from puts
type ContractType string

const (
	Call ContractType = "call"
	Put  ContractType = "put"
)

// Valid reports whether the contract type is known
func (t ContractType) Valid() bool {
	return t == Call || t == Put
}

// OptionContract is one listed contract from the instrument universe.
// Consumed read-only; the engine never mutates catalog rows.
type OptionContract struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Underlying     string          `db:"underlying" json:"underlying"`
	Strike         decimal.Decimal `db:"strike" json:"strike"`
	Type           ContractType    `db:"contract_type" json:"contract_type"`
	ExpirationDate time.Time       `db:"expiration_date" json:"expiration_date"`
	Volume         int64           `db:"volume" json:"volume"`
	OpenInterest   int64           `db:"open_interest" json:"open_interest"`
	ImpliedVol     float64         `db:"implied_vol" json:"implied_vol"`
}
