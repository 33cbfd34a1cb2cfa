package numbering

import (
	"github.com/shopspring/decimal"

	"cgl/internal/core/id"
)

// Kind is the numbering dimension of an entity.
type Kind string

const (
	KindBook    Kind = "book"
	KindChapter Kind = "chapter"
	KindRecord  Kind = "record"
)

// Step returns the fixed increment for the kind. Books and chapters advance by
// 5 and records by 10, leaving room for manual insertions in between.
func (k Kind) Step() decimal.Decimal {
	switch k {
	case KindRecord:
		return decimal.NewFromInt(10)
	default:
		return decimal.NewFromInt(5)
	}
}

// Scope identifies the collection a visible number is unique within.
// Books are numbered globally; chapters and records per book.
type Scope struct {
	Kind   Kind
	BookID id.ID
}

// BookScope is the global scope of book numbers.
func BookScope() Scope {
	return Scope{Kind: KindBook}
}

// ChapterScope is the scope of the chapters of one book.
func ChapterScope(bookID id.ID) Scope {
	return Scope{Kind: KindChapter, BookID: bookID}
}

// RecordScope is the scope of the records of one book.
func RecordScope(bookID id.ID) Scope {
	return Scope{Kind: KindRecord, BookID: bookID}
}

// Step returns the scope kind's step.
func (s Scope) Step() decimal.Decimal {
	return s.Kind.Step()
}

// Key is the storage key of the scope's counter.
func (s Scope) Key() string {
	if s.Kind == KindBook || id.IsNil(s.BookID) {
		return string(s.Kind)
	}
	return string(s.Kind) + ":" + s.BookID.String()
}

func (s Scope) String() string {
	return s.Key()
}
