// Package record provides records, the numbered entries of a book.
// Records are numbered per book in steps of 10 and may link to a chapter.
package record

import (
	"context"

	"cgl/internal/core/apperror"
	"cgl/internal/core/entity"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
)

// Record is a numbered entry of a book.
type Record struct {
	entity.NumberedEntity

	BookID    id.ID  `db:"book_id" json:"bookId"`
	ChapterID *id.ID `db:"chapter_id" json:"chapterId,omitempty"`

	Content string `db:"content" json:"content"`

	// Meta holds free-form attributes (tags, flags).
	Meta entity.Attributes `db:"meta" json:"meta"`
}

// NewRecord creates a record of a book.
func NewRecord(bookID id.ID, content string) *Record {
	return &Record{
		NumberedEntity: entity.NewNumberedEntity(),
		BookID:         bookID,
		Content:        content,
		Meta:           entity.Attributes{},
	}
}

// NumberingScope implements domain.Numbered.
func (r *Record) NumberingScope() numbering.Scope {
	return numbering.RecordScope(r.BookID)
}

// GetChapterID returns the linked chapter, if any.
func (r *Record) GetChapterID() *id.ID {
	return r.ChapterID
}

// RecordKey is the numeric sort key major*100 + minor.
func (r *Record) RecordKey() int64 {
	return r.GetVisibleNumber().Hundredths()
}

// Validate implements entity.Validatable interface.
func (r *Record) Validate(ctx context.Context) error {
	if id.IsNil(r.BookID) {
		return apperror.NewValidation("bookId is required").WithDetail("field", "bookId")
	}
	if r.ChapterID != nil && id.IsNil(*r.ChapterID) {
		r.ChapterID = nil
	}
	if r.Meta == nil {
		r.Meta = entity.Attributes{}
	}
	return nil
}

// Update carries changed record fields; nil fields are left untouched.
type Update struct {
	Content *string

	// ChapterID relinks the record; the nil UUID unlinks it.
	ChapterID *id.ID

	// Meta is merged into the stored attributes; null values remove keys.
	Meta entity.Attributes

	Version *int
}
