package chapter

import (
	"context"

	"cgl/internal/core/id"
	"cgl/internal/domain"
)

// Repository defines the interface for Chapter persistence.
type Repository interface {
	domain.ContentRepository[*Chapter]

	// SlugExists reports whether another live chapter of the book uses slug.
	SlugExists(ctx context.Context, bookID id.ID, slug string, excludeID id.ID) (bool, error)
}

// BookChecker reports whether a live book exists.
type BookChecker interface {
	Exists(ctx context.Context, bookID id.ID) (bool, error)
}

// MarkdownConverter turns chapter HTML into Markdown.
type MarkdownConverter interface {
	ConvertHTML(html string) (string, error)
}
