package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cgl/internal/domain/record"
	"cgl/internal/infrastructure/http/v1/dto"
)

// RecordHandler handles the records of a book.
type RecordHandler struct {
	*BaseHandler
	service *record.Service
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(base *BaseHandler, service *record.Service) *RecordHandler {
	return &RecordHandler{BaseHandler: base, service: service}
}

// List handles GET /books/:id/records
func (h *RecordHandler) List(c *gin.Context) {
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
	c.JSON(http.StatusOK, dto.NewListEnvelope(result, dto.FromRecord))
}

// Create handles POST /books/:id/records
func (h *RecordHandler) Create(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateRecordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	number, err := dto.ParseVisibleNumber(req.VisibleNumber)
	if err != nil {
		h.Error(c, err)
		return
	}
	rec, err := req.ToEntity(bookID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), rec, number); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromRecord(rec))
}

// Get handles GET /books/:id/records/:recordId
func (h *RecordHandler) Get(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	recordID, ok := h.ParamID(c, "recordId")
	if !ok {
		return
	}

	rec, err := h.service.GetInBook(c.Request.Context(), bookID, recordID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(rec))
}

// Update handles PUT /books/:id/records/:recordId
func (h *RecordHandler) Update(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	recordID, ok := h.ParamID(c, "recordId")
	if !ok {
		return
	}
	var req dto.UpdateRecordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	upd, err := req.ToUpdate()
	if err != nil {
		h.Error(c, err)
		return
	}

	rec, err := h.service.Modify(c.Request.Context(), bookID, recordID, upd)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(rec))
}

// Delete handles DELETE /books/:id/records/:recordId
func (h *RecordHandler) Delete(c *gin.Context) {
	bookID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	recordID, ok := h.ParamID(c, "recordId")
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), bookID, recordID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
