// Package numbering implements the atomic per-scope counter allocator on
// PostgreSQL.
package numbering

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"cgl/internal/core/apperror"
	corenumbering "cgl/internal/core/numbering"
)

// Querier is the subset of pgxpool.Pool / pgx.Tx used by the counter.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// reserveSQL increments the scope counter by one step and returns the new
// value, in hundredths. The inserted value is the step past the scope's
// current maximum, and GREATEST keeps the counter ahead of numbers that were
// set by hand, so a reserved number is never one already stored.
const reserveSQL = `
	INSERT INTO numbering_counters (scope_key, last_value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (scope_key) DO UPDATE
	SET last_value = GREATEST(numbering_counters.last_value + $3, EXCLUDED.last_value),
	    updated_at = now()
	RETURNING last_value`

const setSQL = `
	INSERT INTO numbering_counters (scope_key, last_value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (scope_key) DO UPDATE SET last_value = EXCLUDED.last_value, updated_at = now()
	RETURNING last_value`

// CounterAllocator implements numbering.StrategyCounter.
//
// Reservations run on the querier they are given, normally the pool, so they
// commit on their own: a create that fails afterwards leaves a gap rather
// than handing the same number out twice.
type CounterAllocator struct {
	querier Querier
	finder  corenumbering.MaxFinder
}

// NewCounterAllocator creates a counter allocator. finder seeds new counters
// and catches up with numbers stored outside the counter.
func NewCounterAllocator(querier Querier, finder corenumbering.MaxFinder) *CounterAllocator {
	return &CounterAllocator{querier: querier, finder: finder}
}

// Allocate implements numbering.Allocator.
func (a *CounterAllocator) Allocate(ctx context.Context, scope corenumbering.Scope) (corenumbering.VisibleNumber, error) {
	if a == nil || a.querier == nil {
		return corenumbering.VisibleNumber{}, fmt.Errorf("counter allocator is not initialized")
	}

	last, err := a.finder.MaxNumber(ctx, scope)
	if err != nil {
		return corenumbering.VisibleNumber{}, err
	}
	seed, err := corenumbering.NextInScope(scope, last)
	if err != nil {
		return corenumbering.VisibleNumber{}, err
	}
	step, err := corenumbering.StepHundredths(scope.Step())
	if err != nil {
		return corenumbering.VisibleNumber{}, err
	}

	var reserved int64
	if err := a.querier.QueryRow(ctx, reserveSQL, scope.Key(), seed.Hundredths(), step).Scan(&reserved); err != nil {
		return corenumbering.VisibleNumber{}, apperror.NewInternal(fmt.Errorf("reserve number in %s: %w", scope.Key(), err))
	}

	number, err := corenumbering.FromHundredths(reserved)
	if err != nil {
		return corenumbering.VisibleNumber{}, apperror.NewNumberOverflow(scope.Key(), "", scope.Step().StringFixed(2)).
			WithDetail("reserved", reserved).
			WithCause(corenumbering.ErrOverflow)
	}
	return number, nil
}

// SetLast overwrites the counter of a scope, e.g. after importing content.
// The next reservation returns the larger of last+step and max+step.
func (a *CounterAllocator) SetLast(ctx context.Context, scope corenumbering.Scope, last corenumbering.VisibleNumber) error {
	var stored int64
	if err := a.querier.QueryRow(ctx, setSQL, scope.Key(), last.Hundredths()).Scan(&stored); err != nil {
		return fmt.Errorf("set counter %s: %w", scope.Key(), err)
	}
	return nil
}

var _ corenumbering.Allocator = (*CounterAllocator)(nil)
