package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cgl/internal/domain/book"
	"cgl/internal/infrastructure/http/v1/dto"
)

// BookHandler handles book endpoints.
type BookHandler struct {
	*BaseHandler
	service *book.Service
}

// NewBookHandler creates a new book handler.
func NewBookHandler(base *BaseHandler, service *book.Service) *BookHandler {
	return &BookHandler{BaseHandler: base, service: service}
}

// List handles GET /books
func (h *BookHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListEnvelope(result, dto.FromBook))
}

// Create handles POST /books
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if !h.BindJSON(c, &req) {
		return
	}
	number, err := dto.ParseVisibleNumber(req.VisibleNumber)
	if err != nil {
		h.Error(c, err)
		return
	}

	b := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), b, number); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromBook(b))
}

// Get handles GET /books/:id
func (h *BookHandler) Get(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), bookID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBook(b))
}

// Update handles PUT /books/:id
func (h *BookHandler) Update(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Modify(c.Request.Context(), bookID, req.ToUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBook(b))
}

// Delete handles DELETE /books/:id (soft delete, admin only).
func (h *BookHandler) Delete(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), bookID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
