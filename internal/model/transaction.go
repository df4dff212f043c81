package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized statement row, independent of the bank format
// it was parsed from.
type Transaction struct {
	ID              string              // source identifier, empty for formats without one
	Date            time.Time           // calendar date at UTC midnight (value date where the bank has two)
	Amount          decimal.Decimal     // original currency, negative = outflow
	Currency        string              // ISO code, empty for single-currency formats
	ConvertedAmount decimal.NullDecimal // amount in the target currency, if resolved
	Memo            string
	Payee           string
	Source          string // format name, e.g. "wise"
}

// LedgerAmount returns the amount that should land in the budget: the
// converted amount when present, otherwise the original amount.
func (t Transaction) LedgerAmount() decimal.Decimal {
	if t.ConvertedAmount.Valid {
		return t.ConvertedAmount.Decimal
	}
	return t.Amount
}

// IsOutflow reports whether the transaction takes money out of the account.
func (t Transaction) IsOutflow() bool {
	return t.LedgerAmount().IsNegative()
}

// NewDate returns a calendar date with no time component.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
