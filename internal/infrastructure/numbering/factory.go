package numbering

import (
	"context"
	"fmt"

	corenumbering "cgl/internal/core/numbering"
)

// ScopeFinder routes MaxNumber to the store of the scope's kind.
type ScopeFinder map[corenumbering.Kind]corenumbering.MaxFinder

// MaxNumber implements numbering.MaxFinder.
func (f ScopeFinder) MaxNumber(ctx context.Context, scope corenumbering.Scope) (*corenumbering.VisibleNumber, error) {
	finder, ok := f[scope.Kind]
	if !ok {
		return nil, fmt.Errorf("no number store for scope kind %q", scope.Kind)
	}
	return finder.MaxNumber(ctx, scope)
}

// NewAllocator builds the allocator for a configured strategy.
func NewAllocator(strategy corenumbering.Strategy, querier Querier, finder corenumbering.MaxFinder) (corenumbering.Allocator, error) {
	switch strategy {
	case corenumbering.StrategyCounter, "":
		if querier == nil {
			return nil, fmt.Errorf("counter strategy needs a database querier")
		}
		return NewCounterAllocator(querier, finder), nil
	case corenumbering.StrategyScan:
		return corenumbering.NewScanAllocator(finder), nil
	}
	return nil, fmt.Errorf("unknown numbering strategy %q", strategy)
}
