package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/ynabimport/internal/model"
)

const (
	wiseDateLayout = "DD-MM-YYYY"
	otpDateLayout  = "YYYY.MM.DD., <weekday>"
)

var (
	wiseDatePattern = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
	// The weekday suffix is informational and may be missing.
	otpDatePattern = regexp.MustCompile(`^(\d{4})\.(\d{2})\.(\d{2})\.(?:,\s*\S.*)?$`)
)

// ParseWiseDate parses a Wise statement date such as "25-12-2020".
func ParseWiseDate(s string) (time.Time, error) {
	m := wiseDatePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, MalformedDateError{Value: s, Layout: wiseDateLayout}
	}
	return calendarDate(s, wiseDateLayout, m[3], m[2], m[1])
}

// ParseOTPDate parses an OTP statement date such as "2020.12.25., péntek".
func ParseOTPDate(s string) (time.Time, error) {
	m := otpDatePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, MalformedDateError{Value: s, Layout: otpDateLayout}
	}
	return calendarDate(s, otpDateLayout, m[1], m[2], m[3])
}

// calendarDate builds a date from matched digits and rejects dates that
// time.Date would normalize, like 31-02.
func calendarDate(raw, layout, year, month, day string) (time.Time, error) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)

	date := model.NewDate(y, time.Month(m), d)
	if date.Year() != y || int(date.Month()) != m || date.Day() != d {
		return time.Time{}, MalformedDateError{Value: raw, Layout: layout}
	}
	return date, nil
}
