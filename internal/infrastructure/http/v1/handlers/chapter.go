package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cgl/internal/domain/chapter"
	"cgl/internal/infrastructure/http/v1/dto"
)

// ChapterHandler handles the chapters of a book.
type ChapterHandler struct {
	*BaseHandler
	service *chapter.Service
}

// NewChapterHandler creates a new chapter handler.
func NewChapterHandler(base *BaseHandler, service *chapter.Service) *ChapterHandler {
	return &ChapterHandler{BaseHandler: base, service: service}
}

// List handles GET /books/:id/chapters
func (h *ChapterHandler) List(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListByBook(c.Request.Context(), bookID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListEnvelope(result, dto.FromChapter))
}

// Create handles POST /books/:id/chapters
func (h *ChapterHandler) Create(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateChapterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	number, err := dto.ParseVisibleNumber(req.VisibleNumber)
	if err != nil {
		h.Error(c, err)
		return
	}

	ch := req.ToEntity(bookID)
	if err := h.service.Create(c.Request.Context(), ch, number); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromChapter(ch))
}

// Get handles GET /books/:id/chapters/:chapterId
func (h *ChapterHandler) Get(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	chapterID, ok := h.ParamID(c, "chapterId")
	if !ok {
		return
	}

	ch, err := h.service.GetInBook(c.Request.Context(), bookID, chapterID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromChapter(ch))
}

// Update handles PUT /books/:id/chapters/:chapterId
func (h *ChapterHandler) Update(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	chapterID, ok := h.ParamID(c, "chapterId")
	if !ok {
		return
	}
	var req dto.UpdateChapterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ch, err := h.service.Modify(c.Request.Context(), bookID, chapterID, req.ToUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromChapter(ch))
}

// Delete handles DELETE /books/:id/chapters/:chapterId
func (h *ChapterHandler) Delete(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	chapterID, ok := h.ParamID(c, "chapterId")
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), bookID, chapterID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Markdown handles GET /books/:id/chapters/:chapterId/markdown
func (h *ChapterHandler) Markdown(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	chapterID, ok := h.ParamID(c, "chapterId")
	if !ok {
		return
	}

	out, err := h.service.ExportMarkdown(c.Request.Context(), bookID, chapterID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(out))
}
