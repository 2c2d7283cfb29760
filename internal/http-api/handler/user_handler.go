package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/middleware"
	"reviewdb/internal/http-api/permissions"
	"reviewdb/internal/http-api/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers user management routes. All of them require
// authentication; the privileged check happens per request because the
// ":username" parameter doubles as the "me" alias for self-service access.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	users := router.Group("/users", auth)
	{
		users.GET("", h.List)
		users.POST("", h.Create)
		users.GET("/:username", h.Get)
		users.PATCH("/:username", h.Update)
		users.DELETE("/:username", h.Delete)
	}
}

// List retrieves users with optional username-prefix search
// GET /api/v1/users/?search=bo&page=1&page_size=20
func (h *UserHandler) List(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if !permissions.CanManageUsers(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}

	page, pageSize := parsePagination(c)
	users, err := h.userService.ListUsers(c.Query("search"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, users)
}

// Create adds a user with an arbitrary role
// POST /api/v1/users/
func (h *UserHandler) Create(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if !permissions.CanManageUsers(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.CreateUser(req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user)
	case errors.Is(err, service.ErrUsernameReserved), errors.Is(err, service.ErrInvalidUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNameInUse), errors.Is(err, service.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Get retrieves a user by username; "me" resolves to the caller
// GET /api/v1/users/{username}/
func (h *UserHandler) Get(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	username := c.Param("username")

	if username == "me" {
		profile, err := h.userService.GetProfile(actor.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, profile)
		return
	}

	if !permissions.CanManageUsers(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}

	user, err := h.userService.GetByUsername(username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update patches a user; the "me" alias uses the profile subset where the
// role field does not exist
// PATCH /api/v1/users/{username}/
func (h *UserHandler) Update(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	username := c.Param("username")

	if username == "me" {
		var req dto.UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		profile, err := h.userService.UpdateProfile(actor.ID, req)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, profile)
		case errors.Is(err, service.ErrEmailInUse):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if !permissions.CanManageUsers(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateUser(username, req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, user)
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Delete removes a user; deleting "me" is not allowed
// DELETE /api/v1/users/{username}/
func (h *UserHandler) Delete(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	username := c.Param("username")

	if username == "me" {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete own account"})
		return
	}
	if !permissions.CanManageUsers(actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}

	if err := h.userService.DeleteUser(username); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
