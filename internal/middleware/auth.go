package middleware

import (
	"errors"
	"strings"

	"workflow-go/internal/service"
	"workflow-go/internal/utils"

	"github.com/gin-gonic/gin"
)

const contextUserID = "user_id"

// AuthMiddleware requires a valid bearer token and stores its claims in the context.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Access token required")
			c.Abort()
			return
		}

		scheme, token, _ := strings.Cut(authHeader, " ")
		if scheme != "Bearer" {
			utils.Forbidden(c, "Invalid token")
			c.Abort()
			return
		}

		claims, err := authService.Authenticate(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, service.ErrMissingToken) {
				utils.Unauthorized(c, "Access token required")
			} else {
				utils.Forbidden(c, "Invalid token")
			}
			c.Abort()
			return
		}

		c.Set(contextUserID, claims.UserID)

		c.Next()
	}
}

// GetUserID returns the authenticated user ID.
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}
