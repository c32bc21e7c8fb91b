package handler

import (
	"errors"
	"net/http"

	"github.com/fitpro/backend/internal/model"
	"github.com/fitpro/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Email, password and name"
// @Success 201 {object} model.Envelope
// @Failure 400 {object} model.Envelope
// @Failure 409 {object} model.Envelope
// @Failure 500 {object} model.Envelope
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error("Email and password are required"))
		return
	}

	data, err := h.svc.Register(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.Success("User registered successfully", data))
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.Envelope
// @Failure 401 {object} model.Envelope
// @Failure 403 {object} model.Envelope
// @Failure 500 {object} model.Envelope
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, model.Error("Invalid credentials"))
		return
	}

	data, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success("Login successful", data))
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "Refresh token"
// @Success 200 {object} model.Envelope
// @Failure 401 {object} model.Envelope
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusUnauthorized, model.Error("Invalid refresh token"))
		return
	}

	data, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success("Token refreshed successfully", data))
}

// Logout godoc
// @Summary Logout
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Envelope
// @Failure 401 {object} model.Envelope
// @Failure 403 {object} model.Envelope
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.Error("No token provided"))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), user.ID); err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success("Logout successful", nil))
}

// Profile godoc
// @Summary Get current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Envelope
// @Failure 401 {object} model.Envelope
// @Failure 404 {object} model.Envelope
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.Error("No token provided"))
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), user.ID)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success("Profile retrieved successfully", profile))
}

// writeAuthError maps the service error taxonomy to the response envelope.
// Messages stay uniform across indistinguishable failure kinds; no internal
// detail crosses the boundary.
func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, model.Error("Email and password are required"))
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, model.Error("User already exists"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.Error("Invalid credentials"))
	case errors.Is(err, service.ErrAccountDeactivated):
		c.JSON(http.StatusForbidden, model.Error("User account is deactivated"))
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, model.Error("Invalid refresh token"))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.Error("User not found"))
	default:
		c.JSON(http.StatusInternalServerError, model.Error("Server error"))
	}
}
