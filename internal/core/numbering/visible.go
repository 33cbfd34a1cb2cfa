// Package numbering computes, formats, parses and compares visible numbers:
// the reader-facing "MMM.mm" identifiers carried by books, chapters and
// records, independent of their internal IDs.
//
// Every function here is pure. The last number assigned in a scope always
// lives in the store and is passed in explicitly.
package numbering

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxMajor is the largest major part a stored visible number may carry.
	MaxMajor = 999
	// MaxMinor is the largest minor part a stored visible number may carry.
	MaxMinor = 99
)

var (
	// ErrOverflow is returned when advancing would leave the 000.00–999.99 range.
	ErrOverflow = errors.New("numbering: visible number overflow")
	// ErrInvalidStep is returned for non-positive steps or steps finer than 0.01.
	ErrInvalidStep = errors.New("numbering: step must be positive with at most two decimals")
	// ErrOutOfRange is returned when constructing a number outside the valid bounds.
	ErrOutOfRange = errors.New("numbering: visible number out of range")
)

var (
	canonicalPattern = regexp.MustCompile(`^(\d{1,3})(?:\.(\d{1,2}))?$`)
	hundred          = decimal.NewFromInt(100)
)

// VisibleNumber is a (major, minor) pair ordered by major + minor/100.
type VisibleNumber struct {
	Major int
	Minor int
}

// Zero is the first number assigned in every scope.
var Zero = VisibleNumber{}

// New builds a VisibleNumber, enforcing 0 ≤ major ≤ 999 and 0 ≤ minor ≤ 99.
func New(major, minor int) (VisibleNumber, error) {
	v := VisibleNumber{Major: major, Minor: minor}
	if !v.Valid() {
		return VisibleNumber{}, fmt.Errorf("%w: %d.%d", ErrOutOfRange, major, minor)
	}
	return v, nil
}

// MustNew is New that panics. Use only for constants and tests.
func MustNew(major, minor int) VisibleNumber {
	v, err := New(major, minor)
	if err != nil {
		panic(err)
	}
	return v
}

// Valid reports whether both parts are within bounds.
func (v VisibleNumber) Valid() bool {
	return v.Major >= 0 && v.Major <= MaxMajor && v.Minor >= 0 && v.Minor <= MaxMinor
}

// String returns the canonical "MMM.mm" form.
func (v VisibleNumber) String() string {
	return Format(v.Major, v.Minor)
}

// Hundredths returns the combined value scaled by 100 (major*100 + minor).
// It is also the record key exposed to clients for numeric sorting.
func (v VisibleNumber) Hundredths() int64 {
	return int64(v.Major)*100 + int64(v.Minor)
}

// Decimal returns the combined decimal value major + minor/100.
func (v VisibleNumber) Decimal() decimal.Decimal {
	return decimal.New(v.Hundredths(), -2)
}

// Compare orders two numbers by their combined value: -1, 0 or +1.
func (v VisibleNumber) Compare(o VisibleNumber) int {
	return cmp.Compare(v.Hundredths(), o.Hundredths())
}

// FromHundredths is the inverse of Hundredths.
func FromHundredths(h int64) (VisibleNumber, error) {
	if h < 0 || h > MaxMajor*100+MaxMinor {
		return VisibleNumber{}, fmt.Errorf("%w: %d hundredths", ErrOutOfRange, h)
	}
	return VisibleNumber{Major: int(h / 100), Minor: int(h % 100)}, nil
}

// MarshalText renders the canonical form, so JSON carries "012.50".
func (v VisibleNumber) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText accepts only the strict pattern.
func (v *VisibleNumber) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("numbering: invalid visible number %q", string(text))
	}
	*v = parsed
	return nil
}

// Format renders major zero-padded to at least three digits and minor to
// exactly two. Major values of 1000 and above keep all their digits.
func Format(major, minor int) string {
	return fmt.Sprintf("%03d.%02d", major, minor)
}

// Parse reads the strict form ^\d{1,3}(\.\d{1,2})?$ after trimming spaces.
// The decimal digits are read as an integer, so "12.5" yields minor 5.
func Parse(s string) (VisibleNumber, bool) {
	m := canonicalPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return VisibleNumber{}, false
	}
	major, _ := strconv.Atoi(m[1])
	minor := 0
	if m[2] != "" {
		minor, _ = strconv.Atoi(m[2])
	}
	return VisibleNumber{Major: major, Minor: minor}, true
}

// ParseLenient is Parse with the legacy fallback: any other non-negative
// numeric string is truncated to its integer part with minor 0 ("1234.56"
// becomes 1234.00). Non-numeric input is reported as absent.
//
// The result may exceed MaxMajor; callers that store it must check Valid.
func ParseLenient(s string) (VisibleNumber, bool) {
	if v, ok := Parse(s); ok {
		return v, true
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return VisibleNumber{}, false
	}
	floor := d.Floor()
	if floor.GreaterThan(decimal.NewFromInt(1<<31 - 1)) {
		return VisibleNumber{}, false
	}
	return VisibleNumber{Major: int(floor.IntPart())}, true
}

// Next returns the number following last by step, computed in the combined
// decimal domain. A nil last means the scope is empty and yields 000.00.
//
// Results beyond 999.99 return ErrOverflow together with the unbounded value,
// so callers can still report what the next number would have been.
func Next(last *VisibleNumber, step decimal.Decimal) (VisibleNumber, error) {
	if err := validateStep(step); err != nil {
		return VisibleNumber{}, err
	}
	if last == nil {
		return Zero, nil
	}

	sum := last.Decimal().Add(step)
	major := sum.IntPart()
	minor := sum.Sub(decimal.NewFromInt(major)).Mul(hundred).IntPart()
	if major > MaxMajor {
		return VisibleNumber{Major: int(major), Minor: int(minor)}, fmt.Errorf("%w: %s + %s", ErrOverflow, last, step)
	}
	return VisibleNumber{Major: int(major), Minor: int(minor)}, nil
}

// NextString is Next over stored strings. An empty or non-numeric last is
// treated as an empty scope.
func NextString(last string, step decimal.Decimal) (string, error) {
	v, ok := ParseLenient(last)
	if !ok {
		next, err := Next(nil, step)
		return next.String(), err
	}
	next, err := Next(&v, step)
	return next.String(), err
}

// CompareStrings orders two stored strings by combined value. Strings that do
// not parse sort before every valid number and equal to each other.
func CompareStrings(a, b string) int {
	va, okA := ParseLenient(a)
	vb, okB := ParseLenient(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return va.Compare(vb)
}

// StepHundredths converts a validated step to hundredths.
func StepHundredths(step decimal.Decimal) (int64, error) {
	if err := validateStep(step); err != nil {
		return 0, err
	}
	return step.Mul(hundred).IntPart(), nil
}

func validateStep(step decimal.Decimal) error {
	if !step.IsPositive() {
		return ErrInvalidStep
	}
	if !step.Mul(hundred).IsInteger() {
		return ErrInvalidStep
	}
	return nil
}
