package chapter

import (
	"context"
	"fmt"
	"strings"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/core/tx"
	"cgl/internal/domain"
	"cgl/internal/domain/audit"
)

// Service provides business logic for chapters.
type Service struct {
	*domain.ContentService[*Chapter]
	repo      Repository
	books     BookChecker
	converter MarkdownConverter
}

// NewService creates a new Chapter service.
func NewService(
	repo Repository,
	books BookChecker,
	txManager tx.Manager,
	assigner *numbering.Assigner,
	pub domain.Publisher,
	converter MarkdownConverter,
) *Service {
	base := domain.NewContentService(domain.ContentServiceConfig[*Chapter]{
		Repo:       repo,
		TxManager:  txManager,
		Assigner:   assigner,
		EntityName: "chapter",
	})

	svc := &Service{
		ContentService: base,
		repo:           repo,
		books:          books,
		converter:      converter,
	}

	base.Hooks().OnBeforeCreate(audit.EnrichCreatedBy[*Chapter])
	base.Hooks().OnBeforeCreate(svc.checkSlug)
	base.Hooks().OnBeforeUpdate(audit.EnrichUpdatedBy[*Chapter])
	base.Hooks().OnBeforeUpdate(svc.checkSlug)
	base.Hooks().OnAfterCreate(domain.PublishCreated[*Chapter](pub, domain.SubjectChapterCreated))

	return svc
}

// Create stores a new chapter of an existing book.
func (s *Service) Create(ctx context.Context, c *Chapter, number *numbering.VisibleNumber) error {
	if err := s.requireBook(ctx, c.BookID); err != nil {
		return err
	}
	c.Normalize()
	return s.ContentService.Create(ctx, c, number)
}

// GetInBook returns a chapter only if it belongs to bookID.
func (s *Service) GetInBook(ctx context.Context, bookID, chapterID id.ID) (*Chapter, error) {
	c, err := s.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if c.BookID != bookID {
		return nil, apperror.NewNotFound("chapter", chapterID.String())
	}
	return c, nil
}

// ListByBook returns the book's chapters ordered by visible number.
func (s *Service) ListByBook(ctx context.Context, bookID id.ID, filter domain.ListFilter) (domain.ListResult[*Chapter], error) {
	if err := s.requireBook(ctx, bookID); err != nil {
		return domain.ListResult[*Chapter]{}, err
	}
	filter.BookID = &bookID
	filter.ChapterID = nil
	return s.List(ctx, filter)
}

// Modify applies upd to a chapter of the book.
func (s *Service) Modify(ctx context.Context, bookID, chapterID id.ID, upd Update) (*Chapter, error) {
	c, err := s.GetInBook(ctx, bookID, chapterID)
	if err != nil {
		return nil, err
	}
	if upd.Version != nil && *upd.Version != c.Version {
		return nil, apperror.NewConcurrentModification("chapter", chapterID.String())
	}

	upd.Apply(c)
	c.Normalize()
	if err := s.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Remove soft-deletes a chapter of the book.
func (s *Service) Remove(ctx context.Context, bookID, chapterID id.ID) error {
	if _, err := s.GetInBook(ctx, bookID, chapterID); err != nil {
		return err
	}
	return s.Delete(ctx, chapterID)
}

// ExportMarkdown renders the chapter as a Markdown document headed by its
// visible number and title.
func (s *Service) ExportMarkdown(ctx context.Context, bookID, chapterID id.ID) (string, error) {
	c, err := s.GetInBook(ctx, bookID, chapterID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n", c.GetVisibleNumber(), c.Title)
	if c.Header != "" {
		fmt.Fprintf(&b, "\n_%s_\n", c.Header)
	}
	if c.Intro != "" {
		fmt.Fprintf(&b, "\n%s\n", c.Intro)
	}
	if strings.TrimSpace(c.ContentHTML) != "" {
		body, err := s.converter.ConvertHTML(c.ContentHTML)
		if err != nil {
			return "", apperror.NewInternal(fmt.Errorf("convert chapter html: %w", err)).
				WithDetail("chapter", chapterID.String())
		}
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(body))
	}
	if c.Notes != "" {
		fmt.Fprintf(&b, "\n---\n\n%s\n", c.Notes)
	}
	return b.String(), nil
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

func (s *Service) checkSlug(ctx context.Context, c *Chapter) error {
	exists, err := s.repo.SlugExists(ctx, c.BookID, c.Slug, c.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("chapter", "slug", c.Slug).WithDetail("bookId", c.BookID.String())
	}
	return nil
}
