// Package domaintest provides in-memory collaborators for service tests.
package domaintest

import (
	"context"
	"slices"
	"sync"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/domain"
)

type chaptered interface {
	GetChapterID() *id.ID
}

type statused interface {
	GetStatus() domain.Status
}

type deletable interface {
	IsDeleted() bool
	SetDeleted(bool)
}

// MemRepo is an in-memory domain.ContentRepository enforcing per-scope
// number uniqueness the way the database constraints do.
type MemRepo[T domain.Numbered] struct {
	mu      sync.Mutex
	items   map[id.ID]T
	order   []id.ID
	numbers map[string]map[int64]id.ID

	// CreateErr, when set, is returned by Create before anything is stored.
	CreateErr error
	Creates   int
}

// NewMemRepo creates an empty repository.
func NewMemRepo[T domain.Numbered]() *MemRepo[T] {
	return &MemRepo[T]{
		items:   make(map[id.ID]T),
		numbers: make(map[string]map[int64]id.ID),
	}
}

// Create implements domain.ContentRepository.
func (r *MemRepo[T]) Create(_ context.Context, e T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Creates++
	if r.CreateErr != nil {
		return r.CreateErr
	}
	key := e.NumberingScope().Key()
	n := e.GetVisibleNumber()
	if r.numbers[key] == nil {
		r.numbers[key] = make(map[int64]id.ID)
	}
	if _, taken := r.numbers[key][n.Hundredths()]; taken {
		return apperror.NewNumberConflict(key, n.String())
	}
	r.numbers[key][n.Hundredths()] = e.GetID()
	r.items[e.GetID()] = e
	r.order = append(r.order, e.GetID())
	return nil
}

// GetByID implements domain.ContentRepository.
func (r *MemRepo[T]) GetByID(_ context.Context, entityID id.ID) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[entityID]
	if !ok || isDeleted(e) {
		var zero T
		return zero, apperror.NewNotFound("entity", entityID.String())
	}
	return e, nil
}

// Update implements domain.ContentRepository.
func (r *MemRepo[T]) Update(_ context.Context, e T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[e.GetID()]; !ok {
		return apperror.NewNotFound("entity", e.GetID().String())
	}
	r.items[e.GetID()] = e
	return nil
}

// SetDeletionMark implements domain.ContentRepository.
func (r *MemRepo[T]) SetDeletionMark(_ context.Context, entityID id.ID, marked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[entityID]
	if !ok {
		return apperror.NewNotFound("entity", entityID.String())
	}
	if d, ok := any(e).(deletable); ok {
		d.SetDeleted(marked)
	}
	return nil
}

// List implements domain.ContentRepository.
func (r *MemRepo[T]) List(_ context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []T
	for _, eid := range r.order {
		e := r.items[eid]
		if !f.IncludeDeleted && isDeleted(e) {
			continue
		}
		scope := e.NumberingScope()
		if f.BookID != nil && scope.BookID != *f.BookID {
			continue
		}
		if f.ChapterID != nil {
			c, ok := any(e).(chaptered)
			if !ok || c.GetChapterID() == nil || *c.GetChapterID() != *f.ChapterID {
				continue
			}
		}
		if f.Status != "" {
			if s, ok := any(e).(statused); ok && s.GetStatus() != f.Status {
				continue
			}
		}
		if !f.Range.Contains(e.GetVisibleNumber()) {
			continue
		}
		matched = append(matched, e)
	}

	slices.SortFunc(matched, func(a, b T) int {
		return a.GetVisibleNumber().Compare(b.GetVisibleNumber())
	})

	total := int64(len(matched))
	start := min(f.Offset, len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	items := matched[start:end]
	if items == nil {
		items = []T{}
	}
	return domain.ListResult[T]{Items: items, TotalCount: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Exists implements domain.ContentRepository.
func (r *MemRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	_, err := r.GetByID(ctx, entityID)
	return err == nil, nil
}

// MaxNumber implements numbering.MaxFinder, counting soft-deleted rows.
func (r *MemRepo[T]) MaxNumber(_ context.Context, scope numbering.Scope) (*numbering.VisibleNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *numbering.VisibleNumber
	for h := range r.numbers[scope.Key()] {
		v, err := numbering.FromHundredths(h)
		if err != nil {
			return nil, err
		}
		if best == nil || v.Compare(*best) > 0 {
			best = &v
		}
	}
	return best, nil
}

// All returns every stored entity in insertion order.
func (r *MemRepo[T]) All() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, 0, len(r.order))
	for _, eid := range r.order {
		out = append(out, r.items[eid])
	}
	return out
}

func isDeleted[T any](e T) bool {
	d, ok := any(e).(deletable)
	return ok && d.IsDeleted()
}

// PassthroughTx runs functions without a transaction.
type PassthroughTx struct{}

// RunInTransaction implements tx.Manager.
func (PassthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

// PublishedEvent is an event captured by Publisher.
type PublishedEvent struct {
	Subject string
	Event   domain.ContentEvent
}

// Publish implements domain.Publisher.
func (p *Publisher) Publish(_ context.Context, subject string, ev domain.ContentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, PublishedEvent{Subject: subject, Event: ev})
	return nil
}

// NewScanAssigner returns an assigner reading the maximum from finder.
func NewScanAssigner(finder numbering.MaxFinder) *numbering.Assigner {
	return numbering.NewAssigner(numbering.NewScanAllocator(finder), numbering.DefaultAssignerConfig())
}
