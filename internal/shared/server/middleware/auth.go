package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"prioritizer-backend/internal/shared/server/respond"
)

// APIKey requires a matching X-Api-Key header on every request. An empty
// configured key disables the check, which is the expected dev setup.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		provided := c.GetHeader("X-Api-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid API key", nil)
			return
		}
		c.Next()
	}
}
