package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/musiq-backend/internal/response"
	"github.com/stemsi/musiq-backend/internal/service"
)

// MediaHandler handles media upload endpoints.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadMedia godoc
// POST /api/v1/media/upload
// Stores an audio or score file and returns its upload ID.
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	upload, err := h.mediaService.SaveUpload(file, header)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, upload)
}
