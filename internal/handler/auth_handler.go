package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/testcraft-backend/internal/middleware"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/service"
	"github.com/stemsi/testcraft-backend/internal/validator"
)

// AuthHandler handles teacher authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup godoc
// POST /api/v1/auth/signup
// Creates a teacher account and signs it in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Created(c, res)
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password and returns a JWT. Any older session of the
// teacher is ended.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// Logout godoc
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the signed-in teacher.
func (h *AuthHandler) Me(c *gin.Context) {
	teacher, err := h.authService.Me(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"teacher": teacher})
}
