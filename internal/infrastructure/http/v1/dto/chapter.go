package dto

import (
	"cgl/internal/core/id"
	"cgl/internal/domain"
	"cgl/internal/domain/chapter"
)

// CreateChapterRequest is the request body for creating a chapter.
type CreateChapterRequest struct {
	Title            string  `json:"title" binding:"required"`
	Slug             string  `json:"slug"`
	Header           string  `json:"header"`
	PageHeadNote     string  `json:"pageHeadNote"`
	ShowInContents   *bool   `json:"showInContents"`
	SpecialNumbering string  `json:"specialNumbering"`
	Intro            string  `json:"intro"`
	ContentOption    string  `json:"contentOption"`
	DisplayOption    string  `json:"displayOption"`
	ContentHTML      string  `json:"contentHtml"`
	Notes            string  `json:"notes"`
	Status           string  `json:"status"`
	VisibleNumber    *string `json:"visibleNumber"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateChapterRequest) ToEntity(bookID id.ID) *chapter.Chapter {
	c := chapter.NewChapter(bookID, r.Title)
	c.Slug = r.Slug
	c.Header = r.Header
	c.PageHeadNote = r.PageHeadNote
	if r.ShowInContents != nil {
		c.ShowInContents = *r.ShowInContents
	}
	c.SpecialNumbering = r.SpecialNumbering
	c.Intro = r.Intro
	if r.ContentOption != "" {
		c.ContentOption = chapter.ContentOption(r.ContentOption)
	}
	if r.DisplayOption != "" {
		c.DisplayOption = chapter.DisplayOption(r.DisplayOption)
	}
	c.ContentHTML = r.ContentHTML
	c.Notes = r.Notes
	if r.Status != "" {
		c.Status = domain.Status(r.Status)
	}
	return c
}

// UpdateChapterRequest is the request body for updating a chapter.
type UpdateChapterRequest struct {
	Title            *string `json:"title"`
	Slug             *string `json:"slug"`
	Header           *string `json:"header"`
	PageHeadNote     *string `json:"pageHeadNote"`
	ShowInContents   *bool   `json:"showInContents"`
	SpecialNumbering *string `json:"specialNumbering"`
	Intro            *string `json:"intro"`
	ContentOption    *string `json:"contentOption"`
	DisplayOption    *string `json:"displayOption"`
	ContentHTML      *string `json:"contentHtml"`
	Notes            *string `json:"notes"`
	Status           *string `json:"status"`
	Version          *int    `json:"version"`
}

// ToUpdate converts DTO to domain update.
func (r *UpdateChapterRequest) ToUpdate() chapter.Update {
	upd := chapter.Update{
		Title:            r.Title,
		Slug:             r.Slug,
		Header:           r.Header,
		PageHeadNote:     r.PageHeadNote,
		ShowInContents:   r.ShowInContents,
		SpecialNumbering: r.SpecialNumbering,
		Intro:            r.Intro,
		ContentHTML:      r.ContentHTML,
		Notes:            r.Notes,
		Version:          r.Version,
	}
	if r.ContentOption != nil {
		o := chapter.ContentOption(*r.ContentOption)
		upd.ContentOption = &o
	}
	if r.DisplayOption != nil {
		o := chapter.DisplayOption(*r.DisplayOption)
		upd.DisplayOption = &o
	}
	if r.Status != nil {
		s := domain.Status(*r.Status)
		upd.Status = &s
	}
	return upd
}

// ChapterResponse is the response DTO for a chapter.
type ChapterResponse struct {
	ContentResponse
	BookID           string `json:"bookId"`
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	Header           string `json:"header,omitempty"`
	PageHeadNote     string `json:"pageHeadNote,omitempty"`
	ShowInContents   bool   `json:"showInContents"`
	SpecialNumbering string `json:"specialNumbering,omitempty"`
	Intro            string `json:"intro,omitempty"`
	ContentOption    string `json:"contentOption"`
	DisplayOption    string `json:"displayOption"`
	ContentHTML      string `json:"contentHtml,omitempty"`
	Notes            string `json:"notes,omitempty"`
	Status           string `json:"status"`
}

// FromChapter converts domain entity to response DTO.
func FromChapter(c *chapter.Chapter) ChapterResponse {
	return ChapterResponse{
		ContentResponse:  FromNumbered(c.NumberedEntity),
		BookID:           c.BookID.String(),
		Title:            c.Title,
		Slug:             c.Slug,
		Header:           c.Header,
		PageHeadNote:     c.PageHeadNote,
		ShowInContents:   c.ShowInContents,
		SpecialNumbering: c.SpecialNumbering,
		Intro:            c.Intro,
		ContentOption:    string(c.ContentOption),
		DisplayOption:    string(c.DisplayOption),
		ContentHTML:      c.ContentHTML,
		Notes:            c.Notes,
		Status:           string(c.Status),
	}
}
