package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the anonymous auth endpoints. The signup route
// additionally carries the per-IP rate limiter.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, signupLimiter gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", signupLimiter, h.Signup)
		auth.POST("/token", h.Token)
	}
}

// Signup requests a confirmation code for a (username, email) pair
// POST /api/v1/auth/signup/
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authService.Signup(req.Username, req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.SignupResponse{Username: req.Username, Email: req.Email})
	case errors.Is(err, service.ErrUsernameReserved), errors.Is(err, service.ErrInvalidUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNameInUse), errors.Is(err, service.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCodeThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Token exchanges a confirmation code for a bearer token
// POST /api/v1/auth/token/
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.ExchangeCode(req.Username, req.ConfirmationCode)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
