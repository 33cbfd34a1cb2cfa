// Package chapter provides chapters, numbered per book in steps of 5.
package chapter

import (
	"context"
	"strings"
	"unicode/utf8"

	"cgl/internal/core/apperror"
	"cgl/internal/core/entity"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/domain"
)

// MaxTitleLength is the maximum title length in characters.
const MaxTitleLength = 220

// ContentOption selects what kind of content the chapter holds.
type ContentOption string

const (
	ContentAQOnly    ContentOption = "AQ_ONLY"
	ContentTextOnly  ContentOption = "TEXT_ONLY"
	ContentTableOnly ContentOption = "TABLE_ONLY"
	ContentMixed     ContentOption = "MIXED"
)

// Valid reports whether o is a known option.
func (o ContentOption) Valid() bool {
	switch o {
	case ContentAQOnly, ContentTextOnly, ContentTableOnly, ContentMixed:
		return true
	}
	return false
}

// DisplayOption selects how the chapter is presented.
type DisplayOption string

const (
	DisplayNormal    DisplayOption = "NORMAL"
	DisplayHighlight DisplayOption = "HIGHLIGHT"
	DisplayAppendix  DisplayOption = "APPENDIX"
	DisplayHidden    DisplayOption = "HIDDEN"
)

// Valid reports whether o is a known option.
func (o DisplayOption) Valid() bool {
	switch o {
	case DisplayNormal, DisplayHighlight, DisplayAppendix, DisplayHidden:
		return true
	}
	return false
}

// Chapter represents a chapter of a book.
type Chapter struct {
	entity.NumberedEntity

	BookID id.ID `db:"book_id" json:"bookId"`

	Title string `db:"title" json:"title"`
	// Slug is unique within the book.
	Slug string `db:"slug" json:"slug"`

	Header           string `db:"header" json:"header"`
	PageHeadNote     string `db:"page_head_note" json:"pageHeadNote"`
	ShowInContents   bool   `db:"show_in_contents" json:"showInContents"`
	SpecialNumbering string `db:"special_numbering" json:"specialNumbering"`
	Intro            string `db:"intro" json:"intro"`

	ContentOption ContentOption `db:"content_option" json:"contentOption"`
	DisplayOption DisplayOption `db:"display_option" json:"displayOption"`

	ContentHTML string `db:"content_html" json:"contentHtml"`
	Notes       string `db:"notes" json:"notes"`

	Status domain.Status `db:"status" json:"status"`
}

// NewChapter creates a draft chapter with default options.
func NewChapter(bookID id.ID, title string) *Chapter {
	return &Chapter{
		NumberedEntity: entity.NewNumberedEntity(),
		BookID:         bookID,
		Title:          strings.TrimSpace(title),
		ShowInContents: true,
		ContentOption:  ContentMixed,
		DisplayOption:  DisplayNormal,
		Status:         domain.StatusDraft,
	}
}

// NumberingScope implements domain.Numbered.
func (c *Chapter) NumberingScope() numbering.Scope {
	return numbering.ChapterScope(c.BookID)
}

// GetStatus returns the chapter status.
func (c *Chapter) GetStatus() domain.Status {
	return c.Status
}

// Normalize trims text fields, derives the slug and fills defaults.
func (c *Chapter) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Header = strings.TrimSpace(c.Header)
	c.PageHeadNote = strings.TrimSpace(c.PageHeadNote)
	c.SpecialNumbering = strings.TrimSpace(c.SpecialNumbering)
	c.Intro = strings.TrimSpace(c.Intro)
	c.Notes = strings.TrimSpace(c.Notes)
	if c.Slug == "" {
		c.Slug = c.Title
	}
	c.Slug = domain.Slugify(c.Slug)
	if c.ContentOption == "" {
		c.ContentOption = ContentMixed
	}
	if c.DisplayOption == "" {
		c.DisplayOption = DisplayNormal
	}
	if c.Status == "" {
		c.Status = domain.StatusDraft
	}
}

// Validate implements entity.Validatable interface.
func (c *Chapter) Validate(ctx context.Context) error {
	if id.IsNil(c.BookID) {
		return apperror.NewValidation("bookId is required").WithDetail("field", "bookId")
	}
	n := utf8.RuneCountInString(c.Title)
	if n == 0 {
		return apperror.NewValidation("title is required").WithDetail("field", "title")
	}
	if n > MaxTitleLength {
		return apperror.NewValidation("title is too long").
			WithDetail("field", "title").
			WithDetail("max", MaxTitleLength)
	}
	if c.Slug == "" {
		return apperror.NewValidation("slug is required").WithDetail("field", "slug")
	}
	if !c.ContentOption.Valid() {
		return apperror.NewValidation("invalid contentOption").WithDetail("field", "contentOption")
	}
	if !c.DisplayOption.Valid() {
		return apperror.NewValidation("invalid displayOption").WithDetail("field", "displayOption")
	}
	return domain.ValidateStatus(c.Status)
}

// Update carries changed chapter fields; nil fields are left untouched.
type Update struct {
	Title            *string
	Slug             *string
	Header           *string
	PageHeadNote     *string
	ShowInContents   *bool
	SpecialNumbering *string
	Intro            *string
	ContentOption    *ContentOption
	DisplayOption    *DisplayOption
	ContentHTML      *string
	Notes            *string
	Status           *domain.Status
	Version          *int
}

// Apply copies the set fields of u onto c.
func (u Update) Apply(c *Chapter) {
	set(&c.Title, u.Title)
	set(&c.Slug, u.Slug)
	set(&c.Header, u.Header)
	set(&c.PageHeadNote, u.PageHeadNote)
	set(&c.ShowInContents, u.ShowInContents)
	set(&c.SpecialNumbering, u.SpecialNumbering)
	set(&c.Intro, u.Intro)
	set(&c.ContentOption, u.ContentOption)
	set(&c.DisplayOption, u.DisplayOption)
	set(&c.ContentHTML, u.ContentHTML)
	set(&c.Notes, u.Notes)
	set(&c.Status, u.Status)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
