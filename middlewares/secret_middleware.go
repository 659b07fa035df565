package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const SecretHeader = "X-Service-Secret"

// Secret enforces the shared-secret header on every mutating route:
// missing header 401, mismatch 403, secret unset on the server 500.
func Secret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "service secret is not configured"})
			return
		}
		h := c.GetHeader(SecretHeader)
		if h == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing service secret"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(h), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "invalid service secret"})
			return
		}
		c.Next()
	}
}
