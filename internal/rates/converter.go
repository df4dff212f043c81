// Package rates resolves transaction amounts into a single target currency.
package rates

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat keys historical rate tables.
const DateFormat = "2006-01-02"

// Converter resolves an amount in currency on date into the target currency.
type Converter interface {
	Resolve(amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error)
}

// Policy selects a Converter variant.
type Policy string

const (
	PolicyFixed      Policy = "fixed"
	PolicyHistorical Policy = "historical"
	PolicyNone       Policy = "none"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFixed, PolicyHistorical, PolicyNone:
		return p, nil
	case "":
		return PolicyNone, nil
	default:
		return "", fmt.Errorf("unknown conversion policy %q", s)
	}
}

// Identity passes amounts through unchanged, whatever the currency.
type Identity struct{}

// Resolve implements Converter.
func (Identity) Resolve(amount decimal.Decimal, _ string, _ time.Time) (decimal.Decimal, error) {
	return amount, nil
}

// Fixed converts Base amounts with one rate for every date. An invalid Rate
// means the rate could not be resolved and Base amounts fail.
type Fixed struct {
	Base   string
	Target string
	Rate   decimal.NullDecimal
}

// Resolve implements Converter.
func (f Fixed) Resolve(amount decimal.Decimal, currency string, _ time.Time) (decimal.Decimal, error) {
	switch {
	case strings.EqualFold(currency, f.Target):
		return amount, nil
	case strings.EqualFold(currency, f.Base):
		if !f.Rate.Valid {
			return decimal.Zero, RateNotFoundError{Currency: f.Base}
		}
		return amount.Mul(f.Rate.Decimal), nil
	default:
		return decimal.Zero, UnsupportedCurrencyError{Currency: currency}
	}
}

// Historical converts Base amounts with the rate published for the exact
// transaction date. Table is keyed by DateFormat.
type Historical struct {
	Base   string
	Target string
	Table  map[string]decimal.Decimal
}

// Resolve implements Converter.
func (h Historical) Resolve(amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error) {
	switch {
	case strings.EqualFold(currency, h.Target):
		return amount, nil
	case strings.EqualFold(currency, h.Base):
		rate, ok := h.Table[date.Format(DateFormat)]
		if !ok {
			return decimal.Zero, RateNotFoundError{Currency: h.Base, Date: date}
		}
		return amount.Mul(rate), nil
	default:
		return decimal.Zero, UnsupportedCurrencyError{Currency: currency}
	}
}
