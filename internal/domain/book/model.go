// Package book provides books, the top-level numbered content.
// Books are numbered globally in steps of 5.
package book

import (
	"context"
	"strings"
	"unicode/utf8"

	"cgl/internal/core/apperror"
	"cgl/internal/core/entity"
	"cgl/internal/core/numbering"
	"cgl/internal/domain"
)

// MaxTitleLength is the maximum title length in characters.
const MaxTitleLength = 220

// Book represents a book.
type Book struct {
	entity.NumberedEntity

	Title string `db:"title" json:"title"`
	Intro string `db:"intro" json:"intro"`

	// Slug is a unique readable identifier derived from the title.
	Slug string `db:"slug" json:"slug"`

	// GroupNo optionally groups books into collections.
	GroupNo *int `db:"group_no" json:"groupNo,omitempty"`

	Status domain.Status `db:"status" json:"status"`
}

// NewBook creates a draft book.
func NewBook(title string) *Book {
	return &Book{
		NumberedEntity: entity.NewNumberedEntity(),
		Title:          strings.TrimSpace(title),
		Status:         domain.StatusDraft,
	}
}

// NumberingScope implements domain.Numbered.
func (b *Book) NumberingScope() numbering.Scope {
	return numbering.BookScope()
}

// Normalize trims text fields and derives the slug.
func (b *Book) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Intro = strings.TrimSpace(b.Intro)
	if b.Slug == "" {
		b.Slug = b.Title
	}
	b.Slug = domain.Slugify(b.Slug)
	if b.Status == "" {
		b.Status = domain.StatusDraft
	}
}

// Validate implements entity.Validatable interface.
func (b *Book) Validate(ctx context.Context) error {
	n := utf8.RuneCountInString(b.Title)
	if n == 0 {
		return apperror.NewValidation("title is required").WithDetail("field", "title")
	}
	if n > MaxTitleLength {
		return apperror.NewValidation("title is too long").
			WithDetail("field", "title").
			WithDetail("max", MaxTitleLength)
	}
	if b.Slug == "" {
		return apperror.NewValidation("slug is required").WithDetail("field", "slug")
	}
	if b.GroupNo != nil && *b.GroupNo < 1 {
		return apperror.NewValidation("groupNo must be positive").WithDetail("field", "groupNo")
	}
	return domain.ValidateStatus(b.Status)
}

// Update carries changed book fields; nil fields are left untouched.
type Update struct {
	Title   *string
	Intro   *string
	Slug    *string
	GroupNo *int
	Status  *domain.Status
	Version *int
}

// Apply copies the set fields of u onto b.
func (u Update) Apply(b *Book) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Intro != nil {
		b.Intro = *u.Intro
	}
	if u.Slug != nil {
		b.Slug = *u.Slug
	}
	if u.GroupNo != nil {
		if *u.GroupNo == 0 {
			b.GroupNo = nil
		} else {
			g := *u.GroupNo
			b.GroupNo = &g
		}
	}
	if u.Status != nil {
		b.Status = *u.Status
	}
}
