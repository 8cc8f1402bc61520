package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/musiq-backend/internal/middleware"
	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/response"
	"github.com/stemsi/musiq-backend/internal/service"
	"github.com/stemsi/musiq-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Validates email + password against the configured admin, returns JWT.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.AdminLoginResponse{
		Token: token,
		Email: req.Email,
	})
}

// GetAdminProfile godoc
// GET /api/v1/auth/admin/me
// Returns the identity carried by the admin token.
func (h *AuthHandler) GetAdminProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"admin": gin.H{
			"email":      claims.Email,
			"expires_at": claims.ExpiresAt,
		},
	})
}
