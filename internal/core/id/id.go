// Package id generates and parses the internal identifiers of books, chapters,
// records and users. Identifiers are UUIDv7 so that primary keys stay
// time-ordered; they are never shown to readers (see the numbering package).
package id

import (
	"github.com/google/uuid"
)

// ID is the internal identifier type.
type ID = uuid.UUID

// New generates a UUIDv7, falling back to a random v4 if the clock source fails.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
