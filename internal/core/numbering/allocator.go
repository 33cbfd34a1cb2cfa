package numbering

import (
	"context"
	"errors"
	"fmt"

	"cgl/internal/core/apperror"
)

// Strategy selects how the next number of a scope is reserved.
type Strategy string

const (
	// StrategyCounter reserves numbers with an atomic increment-and-fetch on a
	// per-scope counter row. Concurrent writers never receive the same number;
	// a failed insert leaves a gap.
	StrategyCounter Strategy = "counter"

	// StrategyScan reads the current maximum of the scope and advances it.
	// Not atomic: concurrent writers can compute the same number, and the
	// loser sees a uniqueness conflict that Assigner retries.
	StrategyScan Strategy = "scan"
)

// ParseStrategy validates a configured strategy name. Empty means counter.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyCounter:
		return StrategyCounter, nil
	case StrategyScan:
		return StrategyScan, nil
	}
	return "", fmt.Errorf("numbering: unknown strategy %q", s)
}

// Allocator reserves the next visible number of a scope.
// Implementations live in the infrastructure layer.
type Allocator interface {
	Allocate(ctx context.Context, scope Scope) (VisibleNumber, error)
}

// MaxFinder reports the highest number currently stored in a scope, or nil
// when the scope is empty.
type MaxFinder interface {
	MaxNumber(ctx context.Context, scope Scope) (*VisibleNumber, error)
}

// MaxFinderFunc adapts a function to MaxFinder.
type MaxFinderFunc func(ctx context.Context, scope Scope) (*VisibleNumber, error)

// MaxNumber implements MaxFinder.
func (f MaxFinderFunc) MaxNumber(ctx context.Context, scope Scope) (*VisibleNumber, error) {
	return f(ctx, scope)
}

// ScanAllocator implements StrategyScan on top of a MaxFinder.
type ScanAllocator struct {
	finder MaxFinder
}

// NewScanAllocator creates a read-max-then-advance allocator.
func NewScanAllocator(finder MaxFinder) *ScanAllocator {
	return &ScanAllocator{finder: finder}
}

// Allocate implements Allocator.
func (a *ScanAllocator) Allocate(ctx context.Context, scope Scope) (VisibleNumber, error) {
	last, err := a.finder.MaxNumber(ctx, scope)
	if err != nil {
		return VisibleNumber{}, err
	}
	return NextInScope(scope, last)
}

// NextInScope advances last by the scope's step, turning overflow into a
// NUMBER_OVERFLOW application error.
func NextInScope(scope Scope, last *VisibleNumber) (VisibleNumber, error) {
	next, err := Next(last, scope.Step())
	if err == nil {
		return next, nil
	}
	if errors.Is(err, ErrOverflow) {
		return VisibleNumber{}, apperror.NewNumberOverflow(scope.Key(), last.String(), scope.Step().StringFixed(2)).
			WithDetail("next", next.String()).
			WithCause(err)
	}
	return VisibleNumber{}, err
}

var _ Allocator = (*ScanAllocator)(nil)
