package numbering

import (
	"fmt"
	"strings"
)

var (
	// RangeMin is the default lower bound of a range query.
	RangeMin = VisibleNumber{Major: 0, Minor: 0}
	// RangeMax is the default upper bound of a range query.
	RangeMax = VisibleNumber{Major: MaxMajor, Minor: MaxMinor}
)

// Range is an inclusive interval of visible numbers inside one scope.
type Range struct {
	From VisibleNumber
	To   VisibleNumber
}

// FullRange selects every number of a scope.
func FullRange() Range {
	return Range{From: RangeMin, To: RangeMax}
}

// NewRange builds an inclusive range. Inverted bounds are allowed and select
// nothing.
func NewRange(from, to VisibleNumber) Range {
	return Range{From: from, To: to}
}

// ParseRange reads optional string bounds. Empty bounds fall back to
// 000.00 and 999.99; non-empty bounds must match the strict pattern.
func ParseRange(from, to string) (Range, error) {
	r := FullRange()
	if strings.TrimSpace(from) != "" {
		v, ok := Parse(from)
		if !ok {
			return Range{}, fmt.Errorf("numbering: invalid range start %q", from)
		}
		r.From = v
	}
	if strings.TrimSpace(to) != "" {
		v, ok := Parse(to)
		if !ok {
			return Range{}, fmt.Errorf("numbering: invalid range end %q", to)
		}
		r.To = v
	}
	return r, nil
}

// IsEmpty reports inverted bounds.
func (r Range) IsEmpty() bool {
	return r.From.Compare(r.To) > 0
}

// IsFull reports whether the range spans the whole numbering space.
func (r Range) IsFull() bool {
	return r.From.Compare(RangeMin) <= 0 && r.To.Compare(RangeMax) >= 0
}

// SameMajor reports whether both bounds share their major part, in which case
// the minor bounds must hold together rather than as alternatives.
func (r Range) SameMajor() bool {
	return r.From.Major == r.To.Major
}

// Contains evaluates the range the way the store does: major strictly
// between the bounds, or on the lower major at or above its minor, or on the
// upper major at or below its minor.
func (r Range) Contains(v VisibleNumber) bool {
	if r.IsEmpty() {
		return false
	}
	if r.SameMajor() {
		return v.Major == r.From.Major && v.Minor >= r.From.Minor && v.Minor <= r.To.Minor
	}
	return (v.Major > r.From.Major && v.Major < r.To.Major) ||
		(v.Major == r.From.Major && v.Minor >= r.From.Minor) ||
		(v.Major == r.To.Major && v.Minor <= r.To.Minor)
}

// String renders the range as "from..to".
func (r Range) String() string {
	return r.From.String() + ".." + r.To.String()
}
