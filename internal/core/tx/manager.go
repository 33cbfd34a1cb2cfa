// Package tx defines the transaction boundary used by domain services.
// The Postgres implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a unit of work inside a database transaction.
type Manager interface {
	// RunInTransaction executes fn within a transaction: rolled back when fn
	// returns an error, committed otherwise. Nested calls reuse the outer
	// transaction through a savepoint.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
