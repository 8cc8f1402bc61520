package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemsi/musiq-backend/internal/document"
	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/response"
	"github.com/stemsi/musiq-backend/internal/service"
	"github.com/stemsi/musiq-backend/internal/validator"
)

// QuestionHandler handles question generation and document endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
	mediaService    *service.MediaService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, mediaService *service.MediaService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, mediaService: mediaService}
}

// documentURL is where a generation's DOCX can be downloaded.
func documentURL(id uuid.UUID) string {
	return "/api/v1/questions/" + id.String() + "/document"
}

// Generate godoc
// POST /api/v1/questions/generate
// Generates one question. Accepts a multipart form with optional audio and
// score files, or JSON referencing previously uploaded files.
func (h *QuestionHandler) Generate(c *gin.Context) {
	var req model.GenerateRequest
	in := service.GenerateInput{}

	if strings.HasPrefix(c.ContentType(), "multipart/") || c.ContentType() == "application/x-www-form-urlencoded" {
		if fields := validator.BindForm(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		var err error
		if in.Audio, err = h.formAttachment(c, "audio", model.UploadKindAudio); err != nil {
			fail(c, err)
			return
		}
		if in.Score, err = h.formAttachment(c, "score", model.UploadKindScore); err != nil {
			fail(c, err)
			return
		}
	} else if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	in.QuestionTypes = req.QuestionTypes
	in.AnswerTypes = req.AnswerTypes
	if err := resolveUploads(h.mediaService, &in, req.AudioUploadID, req.ScoreUploadID); err != nil {
		fail(c, err)
		return
	}

	g, err := h.questionService.Generate(c.Request.Context(), in, nil)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.GenerationResponse{
		Generation:  g,
		DocumentURL: documentURL(g.ID),
	})
}

// formAttachment reads an optional multipart file.
func (h *QuestionHandler) formAttachment(c *gin.Context, field string, kind model.UploadKind) (*model.Attachment, error) {
	file, header, err := c.Request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	att, _, err := h.mediaService.ReadUpload(file, header, kind)
	return att, err
}

// resolveUploads loads files referenced by upload ID into in. Files already
// attached take precedence.
func resolveUploads(media *service.MediaService, in *service.GenerateInput, audioID, scoreID string) error {
	load := func(raw string, kind model.UploadKind) (*model.Attachment, error) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errInvalidUploadID
		}
		return media.LoadUpload(id, kind)
	}

	var err error
	if in.Audio == nil && audioID != "" {
		if in.Audio, err = load(audioID, model.UploadKindAudio); err != nil {
			return err
		}
	}
	if in.Score == nil && scoreID != "" {
		if in.Score, err = load(scoreID, model.UploadKindScore); err != nil {
			return err
		}
	}
	return nil
}

// GetGeneration godoc
// GET /api/v1/questions/:id
// Returns a recent generation.
func (h *QuestionHandler) GetGeneration(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	g, err := h.questionService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.GenerationResponse{
		Generation:  g,
		DocumentURL: documentURL(g.ID),
	})
}

// DownloadDocument godoc
// GET /api/v1/questions/:id/document
// Downloads a generation as music_question.docx.
func (h *QuestionHandler) DownloadDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	data, err := h.questionService.Document(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Attachment(c, document.Filename, document.MIMEType, data)
}

// ExportDocument godoc
// POST /api/v1/questions/document
// Exports arbitrary question text as music_question.docx.
func (h *QuestionHandler) ExportDocument(c *gin.Context) {
	var req model.ExportDocumentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	data, err := h.questionService.ExportText(req.Text)
	if err != nil {
		fail(c, err)
		return
	}

	response.Attachment(c, document.Filename, document.MIMEType, data)
}

