package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserIDHeader carries the caller's user id.
const UserIDHeader = "X-User-ID"

// UserIdentity reads the X-User-ID header, which must hold a UUID, and stores
// it in the context under "user_id".
func UserIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserIDHeader + " header"})
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + UserIDHeader + " header"})
			return
		}
		c.Set("user_id", id.String())
		c.Next()
	}
}

// UserID returns the id stored by UserIdentity.
func UserID(c *gin.Context) string {
	return c.GetString("user_id")
}
