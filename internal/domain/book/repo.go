package book

import (
	"context"

	"cgl/internal/core/id"
	"cgl/internal/domain"
)

// Repository defines the interface for Book persistence.
type Repository interface {
	domain.ContentRepository[*Book]

	// SlugExists reports whether another live book uses slug.
	SlugExists(ctx context.Context, slug string, excludeID id.ID) (bool, error)
}
