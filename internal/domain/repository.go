// Package domain provides the business logic shared by books, chapters and
// records: list filters, repository contracts, lifecycle hooks and the
// generic numbered-content service.
package domain

import (
	"context"

	"cgl/internal/core/entity"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// BookID restricts chapters and records to one book.
	BookID *id.ID

	// ChapterID restricts records to one chapter.
	ChapterID *id.ID

	// Range selects visible numbers between two inclusive bounds. The zero
	// value selects only 000.00; start from DefaultListFilter.
	Range numbering.Range

	// Status filters books and chapters by publication status.
	Status Status

	// Search matches titles (books, chapters) or content (records).
	Search string

	// IncludeDeleted includes soft-deleted entries.
	IncludeDeleted bool

	// OrderBy is "visibleNumber" (default), "createdAt" or "title", with an
	// optional "-" prefix for descending order.
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Range: numbering.FullRange(),
		Limit: 50,
	}
}

// MaxListLimit caps page sizes.
const MaxListLimit = 500

// Normalize clamps paging values.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Repository Interfaces ---

// Numbered is implemented by content carrying a visible number.
type Numbered interface {
	entity.Validatable
	GetID() id.ID
	NumberingScope() numbering.Scope
	GetVisibleNumber() numbering.VisibleNumber
	SetVisibleNumber(v numbering.VisibleNumber)
	SetCreatedBy(userID string)
	SetUpdatedBy(userID string)
}

// ContentRepository defines storage for numbered content.
type ContentRepository[T Numbered] interface {
	// Create inserts a new entity. A taken visible number is reported as
	// apperror.CodeNumberConflict.
	Create(ctx context.Context, entity T) error

	// GetByID retrieves entity by ID.
	GetByID(ctx context.Context, id id.ID) (T, error)

	// Update modifies an existing entity (optimistic locking). The visible
	// number is never rewritten.
	Update(ctx context.Context, entity T) error

	// SetDeletionMark sets or clears the soft-delete mark.
	SetDeletionMark(ctx context.Context, id id.ID, marked bool) error

	// List retrieves entities ordered by visible number.
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// Exists checks if a live entity with given ID exists.
	Exists(ctx context.Context, id id.ID) (bool, error)

	numbering.MaxFinder
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
	BeforeDelete HookEvent = "before_delete"
	AfterDelete  HookEvent = "after_delete"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeCreate registers a hook to run before create.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) {
	r.On(BeforeCreate, hook)
}

// OnAfterCreate registers a hook to run after create.
func (r *HookRegistry[T]) OnAfterCreate(hook Hook[T]) {
	r.On(AfterCreate, hook)
}

// OnBeforeUpdate registers a hook to run before update.
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) {
	r.On(BeforeUpdate, hook)
}

// OnAfterDelete registers a hook to run after delete.
func (r *HookRegistry[T]) OnAfterDelete(hook Hook[T]) {
	r.On(AfterDelete, hook)
}
