// Package audit fills authorship fields from the authenticated caller.
package audit

import (
	"context"

	appctx "cgl/internal/core/context"
)

// Authored is implemented by entities with CreatedBy/UpdatedBy fields.
type Authored interface {
	SetCreatedBy(string)
	SetUpdatedBy(string)
}

// EnrichCreatedBy sets CreatedBy and UpdatedBy from the context user.
// Use in BeforeCreate hooks. If no user is in context, this is a no-op.
func EnrichCreatedBy[T Authored](ctx context.Context, entity T) error {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return nil
	}
	entity.SetCreatedBy(userID)
	entity.SetUpdatedBy(userID)
	return nil
}

// EnrichUpdatedBy sets only UpdatedBy. Use in BeforeUpdate hooks.
func EnrichUpdatedBy[T Authored](ctx context.Context, entity T) error {
	if userID := appctx.GetUserID(ctx); userID != "" {
		entity.SetUpdatedBy(userID)
	}
	return nil
}
