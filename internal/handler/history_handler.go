package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemsi/musiq-backend/internal/document"
	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/response"
	"github.com/stemsi/musiq-backend/internal/service"
	"github.com/stemsi/musiq-backend/internal/validator"
)

// HistoryHandler exposes stored generations to administrators. A nil
// service means history is disabled.
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

func (h *HistoryHandler) enabled(c *gin.Context) bool {
	if h.historyService == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrHistoryDisabled)
		return false
	}
	return true
}

// ListHistory godoc
// GET /api/v1/admin/history
// Lists stored generations, newest first.
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	var q model.HistoryQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	items, pagination, err := h.historyService.List(c.Request.Context(), q.QuestionType, q.Page, q.PerPage)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetHistory godoc
// GET /api/v1/admin/history/:id
// Returns one stored generation.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	g, err := h.historyService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, g)
}

// DeleteHistory godoc
// DELETE /api/v1/admin/history/:id
// Deletes one stored generation.
func (h *HistoryHandler) DeleteHistory(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.historyService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "generation deleted"})
}

// DownloadHistoryDocument godoc
// GET /api/v1/admin/history/:id/document
// Re-exports a stored generation as music_question.docx.
func (h *HistoryHandler) DownloadHistoryDocument(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	data, err := h.historyService.Document(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Attachment(c, document.Filename, document.MIMEType, data)
}
