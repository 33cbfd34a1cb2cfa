package content_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"cgl/internal/core/id"
	"cgl/internal/domain/book"
	"cgl/internal/infrastructure/storage/postgres"
)

const bookTable = "books"

// BookRepo implements book.Repository.
type BookRepo struct {
	*BaseContentRepo[*book.Book]
}

// NewBookRepo creates a new book repository.
func NewBookRepo(txm *postgres.TxManager) *BookRepo {
	return &BookRepo{
		BaseContentRepo: NewBaseContentRepo(
			txm,
			bookTable,
			postgres.ExtractDBColumns[book.Book](),
			func() *book.Book { return &book.Book{} },
			"",
			"title", "slug",
		),
	}
}

// SlugExists reports whether another live book uses slug.
func (r *BookRepo) SlugExists(ctx context.Context, slug string, excludeID id.ID) (bool, error) {
	return r.existsWhere(ctx, squirrel.And{
		squirrel.Eq{"slug": slug},
		squirrel.NotEq{"id": excludeID},
	})
}

var _ book.Repository = (*BookRepo)(nil)
