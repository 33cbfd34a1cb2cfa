package record

import (
	"context"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/core/tx"
	"cgl/internal/domain"
	"cgl/internal/domain/audit"
)

// Service provides business logic for records.
type Service struct {
	*domain.ContentService[*Record]
	books    BookChecker
	chapters ChapterFinder
}

// NewService creates a new Record service.
func NewService(
	repo Repository,
	books BookChecker,
	chapters ChapterFinder,
	txManager tx.Manager,
	assigner *numbering.Assigner,
	pub domain.Publisher,
) *Service {
	base := domain.NewContentService(domain.ContentServiceConfig[*Record]{
		Repo:       repo,
		TxManager:  txManager,
		Assigner:   assigner,
		EntityName: "record",
	})

	svc := &Service{
		ContentService: base,
		books:          books,
		chapters:       chapters,
	}

	base.Hooks().OnBeforeCreate(audit.EnrichCreatedBy[*Record])
	base.Hooks().OnBeforeCreate(svc.checkChapter)
	base.Hooks().OnBeforeUpdate(audit.EnrichUpdatedBy[*Record])
	base.Hooks().OnBeforeUpdate(svc.checkChapter)
	base.Hooks().OnAfterCreate(domain.PublishCreated[*Record](pub, domain.SubjectRecordCreated))

	return svc
}

// Create stores a new record of an existing book.
func (s *Service) Create(ctx context.Context, r *Record, number *numbering.VisibleNumber) error {
	if err := s.requireBook(ctx, r.BookID); err != nil {
		return err
	}
	return s.ContentService.Create(ctx, r, number)
}

// GetInBook returns a record only if it belongs to bookID.
func (s *Service) GetInBook(ctx context.Context, bookID, recordID id.ID) (*Record, error) {
	r, err := s.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if r.BookID != bookID {
		return nil, apperror.NewNotFound("record", recordID.String())
	}
	return r, nil
}

// ListByBook returns the book's records ordered by visible number,
// optionally restricted to filter.ChapterID.
func (s *Service) ListByBook(ctx context.Context, bookID id.ID, filter domain.ListFilter) (domain.ListResult[*Record], error) {
	if err := s.requireBook(ctx, bookID); err != nil {
		return domain.ListResult[*Record]{}, err
	}
	filter.BookID = &bookID
	filter.Status = ""
	return s.List(ctx, filter)
}

// Modify applies upd to a record of the book.
func (s *Service) Modify(ctx context.Context, bookID, recordID id.ID, upd Update) (*Record, error) {
	r, err := s.GetInBook(ctx, bookID, recordID)
	if err != nil {
		return nil, err
	}
	if upd.Version != nil && *upd.Version != r.Version {
		return nil, apperror.NewConcurrentModification("record", recordID.String())
	}

	if upd.Content != nil {
		r.Content = *upd.Content
	}
	if upd.ChapterID != nil {
		if id.IsNil(*upd.ChapterID) {
			r.ChapterID = nil
		} else {
			cid := *upd.ChapterID
			r.ChapterID = &cid
		}
	}
	if upd.Meta != nil {
		r.Meta = r.Meta.Merge(upd.Meta)
	}

	if err := s.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Remove soft-deletes a record of the book.
func (s *Service) Remove(ctx context.Context, bookID, recordID id.ID) error {
	if _, err := s.GetInBook(ctx, bookID, recordID); err != nil {
		return err
	}
	return s.Delete(ctx, recordID)
}

func (s *Service) requireBook(ctx context.Context, bookID id.ID) error {
	if id.IsNil(bookID) {
		return apperror.NewValidation("bookId is required").WithDetail("field", "bookId")
	}
	ok, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewNotFound("book", bookID.String())
	}
	return nil
}

// checkChapter rejects links to chapters of another book.
func (s *Service) checkChapter(ctx context.Context, r *Record) error {
	if r.ChapterID == nil {
		return nil
	}
	c, err := s.chapters.GetByID(ctx, *r.ChapterID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("chapter not found").
				WithDetail("field", "chapterId").
				WithDetail("chapterId", r.ChapterID.String())
		}
		return err
	}
	if c.BookID != r.BookID {
		return apperror.NewValidation("chapter belongs to another book").
			WithDetail("field", "chapterId").
			WithDetail("chapterId", r.ChapterID.String())
	}
	return nil
}
