package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/services"
)

// RequireAuth validates the Bearer token and stashes the authenticated
// user in the request context for downstream handlers.
func RequireAuth(authService services.AuthService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		ctx, err := authService.SetContextFromToken(c.Request.Context(), token)
		if err != nil {
			log.Debug("Rejected token", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
