package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskapi/internal/apierr"
)

const contextKeyUserID = "user_id"

// UserIDFromContext returns the current user ID set by RequireAuth.
// uuid.Nil if not set.
func UserIDFromContext(c *gin.Context) uuid.UUID {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// RequireAuth returns a middleware that checks for a valid Bearer access
// token and sets the current user ID in context. If missing or invalid,
// responds with the 401 envelope.
func RequireAuth(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			apierr.Unauthorized(c, "Authentication credentials were not provided.")
			return
		}
		claims, err := m.ParseType(token, TypeAccess)
		if err != nil {
			apierr.Unauthorized(c, "Given token not valid for any token type.")
			return
		}
		c.Set(contextKeyUserID, claims.UserID)
		c.Next()
	}
}
