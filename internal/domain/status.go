package domain

import "cgl/internal/core/apperror"

// Status is the editorial state of a book or chapter.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReview    Status = "review"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// ValidateStatus returns a field validation error for unknown statuses.
func ValidateStatus(s Status) error {
	if !s.Valid() {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("allowed", []Status{StatusDraft, StatusReview, StatusPublished, StatusArchived})
	}
	return nil
}
