package record

import (
	"context"

	"cgl/internal/core/id"
	"cgl/internal/domain"
	"cgl/internal/domain/chapter"
)

// Repository defines the interface for Record persistence.
type Repository interface {
	domain.ContentRepository[*Record]
}

// BookChecker reports whether a live book exists.
type BookChecker interface {
	Exists(ctx context.Context, bookID id.ID) (bool, error)
}

// ChapterFinder loads chapters a record may link to.
type ChapterFinder interface {
	GetByID(ctx context.Context, chapterID id.ID) (*chapter.Chapter, error)
}
