package book

import (
	"context"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/core/tx"
	"cgl/internal/domain"
	"cgl/internal/domain/audit"
)

// Service provides business logic for books.
type Service struct {
	*domain.ContentService[*Book]
	repo Repository
}

// NewService creates a new Book service.
func NewService(repo Repository, txManager tx.Manager, assigner *numbering.Assigner, pub domain.Publisher) *Service {
	base := domain.NewContentService(domain.ContentServiceConfig[*Book]{
		Repo:       repo,
		TxManager:  txManager,
		Assigner:   assigner,
		EntityName: "book",
	})

	svc := &Service{
		ContentService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(audit.EnrichCreatedBy[*Book])
	base.Hooks().OnBeforeCreate(svc.checkSlug)
	base.Hooks().OnBeforeUpdate(audit.EnrichUpdatedBy[*Book])
	base.Hooks().OnBeforeUpdate(svc.checkSlug)
	base.Hooks().OnAfterCreate(domain.PublishCreated[*Book](pub, domain.SubjectBookCreated))

	return svc
}

// Create normalizes and stores a new book. A nil number assigns the next one.
func (s *Service) Create(ctx context.Context, b *Book, number *numbering.VisibleNumber) error {
	b.Normalize()
	return s.ContentService.Create(ctx, b, number)
}

// Modify applies upd to the stored book.
func (s *Service) Modify(ctx context.Context, bookID id.ID, upd Update) (*Book, error) {
	b, err := s.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if upd.Version != nil && *upd.Version != b.Version {
		return nil, apperror.NewConcurrentModification("book", bookID.String())
	}

	upd.Apply(b)
	b.Normalize()
	if err := s.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns books ordered by visible number.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Book], error) {
	filter.BookID = nil
	filter.ChapterID = nil
	return s.ContentService.List(ctx, filter)
}

func (s *Service) checkSlug(ctx context.Context, b *Book) error {
	exists, err := s.repo.SlugExists(ctx, b.Slug, b.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("book", "slug", b.Slug)
	}
	return nil
}
