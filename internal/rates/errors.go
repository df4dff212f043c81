package rates

import (
	"fmt"
	"time"
)

// UnsupportedCurrencyError means a converter has no way to turn Currency into
// the target currency.
type UnsupportedCurrencyError struct {
	Currency string
}

func (e UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency: %q", e.Currency)
}

// Is checks if the error is an unsupported currency error
func (e UnsupportedCurrencyError) Is(target error) bool {
	_, ok := target.(UnsupportedCurrencyError)
	return ok
}

// RateNotFoundError means no exchange rate is known for the currency on the
// given date. A zero Date means the rate was never resolved at all.
type RateNotFoundError struct {
	Currency string
	Date     time.Time
}

func (e RateNotFoundError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("no %s exchange rate available", e.Currency)
	}
	return fmt.Sprintf("no %s exchange rate for %s", e.Currency, e.Date.Format(DateFormat))
}

// Is checks if the error is a rate not found error
func (e RateNotFoundError) Is(target error) bool {
	_, ok := target.(RateNotFoundError)
	return ok
}

// ExchangeRateFetchError wraps a failed request to an exchange rate source.
type ExchangeRateFetchError struct {
	URL string
	Err error
}

func (e ExchangeRateFetchError) Error() string {
	return fmt.Sprintf("fetching exchange rate from %s: %v", e.URL, e.Err)
}

func (e ExchangeRateFetchError) Unwrap() error { return e.Err }

// Is checks if the error is an exchange rate fetch error
func (e ExchangeRateFetchError) Is(target error) bool {
	_, ok := target.(ExchangeRateFetchError)
	return ok
}
