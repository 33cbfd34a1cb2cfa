package dto

import (
	"cgl/internal/domain"
	"cgl/internal/domain/book"
)

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title   string `json:"title" binding:"required"`
	Intro   string `json:"intro"`
	Slug    string `json:"slug"`
	GroupNo *int   `json:"groupNo"`
	Status  string `json:"status"`
	// VisibleNumber places the book explicitly; omitted means next in sequence.
	VisibleNumber *string `json:"visibleNumber"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateBookRequest) ToEntity() *book.Book {
	b := book.NewBook(r.Title)
	b.Intro = r.Intro
	b.Slug = r.Slug
	b.GroupNo = r.GroupNo
	if r.Status != "" {
		b.Status = domain.Status(r.Status)
	}
	return b
}

// UpdateBookRequest is the request body for updating a book.
type UpdateBookRequest struct {
	Title   *string `json:"title"`
	Intro   *string `json:"intro"`
	Slug    *string `json:"slug"`
	GroupNo *int    `json:"groupNo"`
	Status  *string `json:"status"`
	Version *int    `json:"version"`
}

// ToUpdate converts DTO to domain update.
func (r *UpdateBookRequest) ToUpdate() book.Update {
	upd := book.Update{
		Title:   r.Title,
		Intro:   r.Intro,
		Slug:    r.Slug,
		GroupNo: r.GroupNo,
		Version: r.Version,
	}
	if r.Status != nil {
		s := domain.Status(*r.Status)
		upd.Status = &s
	}
	return upd
}

// BookResponse is the response DTO for a book.
type BookResponse struct {
	ContentResponse
	Title   string `json:"title"`
	Intro   string `json:"intro,omitempty"`
	Slug    string `json:"slug"`
	GroupNo *int   `json:"groupNo,omitempty"`
	Status  string `json:"status"`
}

// FromBook converts domain entity to response DTO.
func FromBook(b *book.Book) BookResponse {
	return BookResponse{
		ContentResponse: FromNumbered(b.NumberedEntity),
		Title:           b.Title,
		Intro:           b.Intro,
		Slug:            b.Slug,
		GroupNo:         b.GroupNo,
		Status:          string(b.Status),
	}
}
