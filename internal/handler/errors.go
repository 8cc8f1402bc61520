package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/musiq-backend/internal/document"
	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/response"
	"github.com/stemsi/musiq-backend/internal/service"
)

var errInvalidUploadID = errors.New("invalid upload id")

// errorCode maps a service error to its HTTP status and API error code.
func errorCode(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrQuestionTypeRequired):
		return http.StatusBadRequest, response.ErrQuestionTypeRequired
	case errors.Is(err, model.ErrUnsupportedQuestionType):
		return http.StatusBadRequest, response.ErrUnsupportedQuestionType
	case errors.Is(err, model.ErrUnsupportedAnswerType):
		return http.StatusBadRequest, response.ErrUnsupportedAnswerType
	case errors.Is(err, document.ErrEmptyBody):
		return http.StatusBadRequest, response.ErrEmptyDocument
	case errors.Is(err, errInvalidUploadID):
		return http.StatusBadRequest, response.ErrInvalidID
	case errors.Is(err, service.ErrGenerationNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrUploadNotFound):
		return http.StatusNotFound, response.ErrUploadNotFound
	case errors.Is(err, service.ErrUploadKindMismatch):
		return http.StatusBadRequest, response.ErrUploadKindWrong
	case errors.Is(err, service.ErrUnsupportedFileType):
		return http.StatusBadRequest, response.ErrUnsupportedFile
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, response.ErrFileTooLarge
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.ErrInvalidCredentials
	case errors.Is(err, service.ErrAdminDisabled):
		return http.StatusForbidden, response.ErrAdminDisabled
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// fail writes the envelope for err.
func fail(c *gin.Context, err error) {
	status, code := errorCode(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.Fail(c, status, code)
}
