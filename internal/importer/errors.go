package importer

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when no registered parser accepts a file.
var ErrUnknownFormat = errors.New("unknown statement format")

// MalformedDateError means a date field did not match the format's pattern.
type MalformedDateError struct {
	Value  string
	Layout string // human readable pattern, e.g. DD-MM-YYYY
}

func (e MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q, want %s", e.Value, e.Layout)
}

// Is checks if the error is a malformed date error
func (e MalformedDateError) Is(target error) bool {
	_, ok := target.(MalformedDateError)
	return ok
}

// MalformedAmountError means an amount field could not be parsed.
type MalformedAmountError struct {
	Value string
}

func (e MalformedAmountError) Error() string {
	return fmt.Sprintf("malformed amount %q", e.Value)
}

// Is checks if the error is a malformed amount error
func (e MalformedAmountError) Is(target error) bool {
	_, ok := target.(MalformedAmountError)
	return ok
}

// RowWidthError means a statement row had a different number of fields than
// the format's column layout.
type RowWidthError struct {
	Format string
	Want   int
	Got    int
}

func (e RowWidthError) Error() string {
	return fmt.Sprintf("%s row has %d fields, want %d", e.Format, e.Got, e.Want)
}

// Is checks if the error is a row width error
func (e RowWidthError) Is(target error) bool {
	_, ok := target.(RowWidthError)
	return ok
}
