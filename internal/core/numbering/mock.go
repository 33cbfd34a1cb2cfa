package numbering

import "context"

// MockAllocator is a test implementation of Allocator.
type MockAllocator struct {
	AllocateFunc func(ctx context.Context, scope Scope) (VisibleNumber, error)
}

// Allocate implements Allocator. Without AllocateFunc it returns 000.00.
func (m *MockAllocator) Allocate(ctx context.Context, scope Scope) (VisibleNumber, error) {
	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx, scope)
	}
	return Zero, nil
}

var _ Allocator = (*MockAllocator)(nil)
