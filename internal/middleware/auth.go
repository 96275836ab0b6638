package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/pkg/jwt"
	"github.com/siteforge/core/internal/pkg/response"
)

const ContextKeyUserID = "user_id"

// Auth returns a middleware that requires a valid JWT issued by the
// auth collaborator and exposes the owner user id to handlers.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil || claims.UserID == "" {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
