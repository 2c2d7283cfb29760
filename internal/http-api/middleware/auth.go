package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewdb/internal/http-api/models"
	"reviewdb/internal/http-api/permissions"
	"reviewdb/internal/http-api/service"
)

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a JWT token in the
// Authorization header and stores the caller identity in the context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// Set user info in context for handlers to use
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("privileged", claims.Privileged)

		c.Next()
	}
}

// ActorFromContext rebuilds the caller identity stored by AuthMiddleware.
// The zero Actor stands for an anonymous request.
func ActorFromContext(c *gin.Context) permissions.Actor {
	actor := permissions.Actor{}
	if v, ok := c.Get("userID"); ok {
		actor.ID, _ = v.(string)
	}
	if v, ok := c.Get("username"); ok {
		actor.Username, _ = v.(string)
	}
	if v, ok := c.Get("role"); ok {
		actor.Role, _ = v.(models.Role)
	}
	if v, ok := c.Get("privileged"); ok {
		actor.Privileged, _ = v.(bool)
	}
	return actor
}

// RequirePrivileged gates catalog and user-management writes: admins and
// staff/superuser accounts only.
func RequirePrivileged() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if !permissions.CanMutateCatalog(actor) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
