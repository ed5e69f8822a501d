package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/stockcast/internal/service"
)

const APIKeyHeader = "X-API-Key"

// APIKey forwards the caller's key, from X-API-Key or a Bearer token, to the
// service gate through the request context.
func APIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if key == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if key != "" {
			c.Request = c.Request.WithContext(service.WithAPIKey(c.Request.Context(), key))
		}
		c.Next()
	}
}
