package content_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"cgl/internal/core/id"
	"cgl/internal/domain/chapter"
	"cgl/internal/infrastructure/storage/postgres"
)

const chapterTable = "chapters"

// ChapterRepo implements chapter.Repository.
type ChapterRepo struct {
	*BaseContentRepo[*chapter.Chapter]
}

// NewChapterRepo creates a new chapter repository.
func NewChapterRepo(txm *postgres.TxManager) *ChapterRepo {
	return &ChapterRepo{
		BaseContentRepo: NewBaseContentRepo(
			txm,
			chapterTable,
			postgres.ExtractDBColumns[chapter.Chapter](),
			func() *chapter.Chapter { return &chapter.Chapter{} },
			"book_id",
			"title", "header",
		),
	}
}

// SlugExists reports whether another live chapter of the book uses slug.
func (r *ChapterRepo) SlugExists(ctx context.Context, bookID id.ID, slug string, excludeID id.ID) (bool, error) {
	return r.existsWhere(ctx, squirrel.And{
		squirrel.Eq{"book_id": bookID, "slug": slug},
		squirrel.NotEq{"id": excludeID},
	})
}

var _ chapter.Repository = (*ChapterRepo)(nil)
