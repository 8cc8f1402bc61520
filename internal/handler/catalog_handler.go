package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/response"
)

// CatalogHandler serves the fixed question and answer type tables.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// GetCatalog godoc
// GET /api/v1/catalog
// Returns the question types and answer types in form order.
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"question_types": model.QuestionTypes,
		"answer_types":   model.AnswerTypes,
	})
}
