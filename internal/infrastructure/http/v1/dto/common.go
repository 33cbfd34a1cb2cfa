// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"cgl/internal/core/apperror"
	"cgl/internal/core/entity"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/domain"
)

// --- Envelopes ---

// Envelope wraps content responses.
type Envelope struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

// ListEnvelope wraps list results with paging metadata.
type ListEnvelope struct {
	OK         bool  `json:"ok"`
	Data       any   `json:"data"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListEnvelope maps every item of res with fn.
func NewListEnvelope[T, R any](res domain.ListResult[T], fn func(T) R) ListEnvelope {
	items := make([]R, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, fn(it))
	}
	return ListEnvelope{
		OK:         true,
		Data:       items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}

// MessageResponse for operations without data.
type MessageResponse struct {
	Message string `json:"message"`
}

// --- List query ---

// ListQuery holds list query parameters. Range bounds use the strict
// "MMM.mm" form; an absent bound is open.
type ListQuery struct {
	From           string `form:"from"`
	To             string `form:"to"`
	Status         string `form:"status"`
	ChapterID      string `form:"chapterId"`
	Search         string `form:"search"`
	OrderBy        string `form:"orderBy"`
	IncludeDeleted bool   `form:"includeDeleted"`
	Limit          int    `form:"limit" binding:"omitempty,min=0,max=500"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a list filter.
func (q *ListQuery) ToFilter() (domain.ListFilter, error) {
	f := domain.DefaultListFilter()

	rg, err := numbering.ParseRange(q.From, q.To)
	if err != nil {
		return f, apperror.NewValidation("invalid visible number range").
			WithDetail("from", q.From).
			WithDetail("to", q.To)
	}
	f.Range = rg

	if q.Status != "" {
		status := domain.Status(strings.ToLower(q.Status))
		if err := domain.ValidateStatus(status); err != nil {
			return f, err
		}
		f.Status = status
	}
	if q.ChapterID != "" {
		chapterID, err := id.Parse(q.ChapterID)
		if err != nil {
			return f, apperror.NewValidation("invalid chapterId").WithDetail("chapterId", q.ChapterID)
		}
		f.ChapterID = &chapterID
	}

	f.Search = strings.TrimSpace(q.Search)
	f.OrderBy = q.OrderBy
	f.IncludeDeleted = q.IncludeDeleted
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset
	return f, nil
}

// ParseVisibleNumber reads an optional explicit number from a request body.
func ParseVisibleNumber(s *string) (*numbering.VisibleNumber, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v, ok := numbering.Parse(*s)
	if !ok {
		return nil, apperror.NewValidation("visibleNumber must look like 005.00").WithDetail("visibleNumber", *s)
	}
	return &v, nil
}

// --- Base DTOs ---

// ContentResponse contains the fields shared by books, chapters and records.
type ContentResponse struct {
	ID            string    `json:"id"`
	VisibleNumber string    `json:"visibleNumber"`
	DeletionMark  bool      `json:"deletionMark,omitempty"`
	Version       int       `json:"version"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	UpdatedBy     string    `json:"updatedBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FromNumbered creates ContentResponse from entity.NumberedEntity.
func FromNumbered(e entity.NumberedEntity) ContentResponse {
	return ContentResponse{
		ID:            e.ID.String(),
		VisibleNumber: e.GetVisibleNumber().String(),
		DeletionMark:  e.DeletionMark,
		Version:       e.Version,
		CreatedBy:     e.CreatedBy,
		UpdatedBy:     e.UpdatedBy,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
