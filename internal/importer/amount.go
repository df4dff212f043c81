package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// otpAmountPattern matches "-1 234,50 HUF": sign, digits with space
// separators, optional two-digit fraction, optional unit.
var otpAmountPattern = regexp.MustCompile(`^([+-]?)(\d[\d \x{00A0}\x{202F}]*?)(?:,(\d{2}))?(?:[\s\x{00A0}]+([^\s\d]\S*))?$`)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ParseOTPAmount parses an OTP amount and returns it with the currency code
// from its unit word (empty when the unit is not an ISO code).
//
// The fraction is read as hundredths and carries the sign of the integer
// part text, so "-0,50" is negative even though its integer value is zero.
func ParseOTPAmount(s string) (decimal.Decimal, string, error) {
	m := otpAmountPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return decimal.Zero, "", MalformedAmountError{Value: s}
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m[2])

	magnitude, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, "", MalformedAmountError{Value: s}
	}

	if m[3] != "" {
		hundredths, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			return decimal.Zero, "", MalformedAmountError{Value: s}
		}
		magnitude = magnitude.Add(decimal.New(hundredths, -2))
	}

	if m[1] == "-" {
		magnitude = magnitude.Neg()
	}

	var currency string
	if currencyCodePattern.MatchString(m[4]) {
		currency = m[4]
	}
	return magnitude, currency, nil
}

// ParseWiseAmount parses the plain decimal amounts of Wise exports.
func ParseWiseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, MalformedAmountError{Value: s}
	}
	return amount, nil
}
