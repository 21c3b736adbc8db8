package core

import (
	"errors"
	"fmt"
)

var (
	ErrFormatMismatch        = errors.New("date text does not match format")
	ErrUnsupportedColumnType = errors.New("unsupported date column type")
	ErrInvalidRange          = errors.New("invalid month range")
	ErrTimezoneHandling      = errors.New("timezone normalization failed")
	ErrNoData                = errors.New("no observations")
)

// FormatMismatchError reports the first date string that could not be parsed
// with the declared format.
type FormatMismatchError struct {
	Value  string
	Format string
	Index  int
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("date %q at row %d does not match format %q", e.Value, e.Index, e.Format)
}

func (e *FormatMismatchError) Unwrap() error { return ErrFormatMismatch }

type UnsupportedColumnTypeError struct {
	Type string
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("date column of type %s is neither temporal nor textual", e.Type)
}

func (e *UnsupportedColumnTypeError) Unwrap() error { return ErrUnsupportedColumnType }

type InvalidRangeError struct {
	Start, End int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("month range %d..%d must satisfy 1 <= start <= end <= 12", e.Start, e.End)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// TimezoneError carries the underlying cause of a failed zone normalization.
type TimezoneError struct {
	Zone  string
	Cause error
}

func (e *TimezoneError) Error() string {
	return fmt.Sprintf("normalizing timezone %q: %v", e.Zone, e.Cause)
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *TimezoneError) Unwrap() []error { return []error{ErrTimezoneHandling, e.Cause} }
