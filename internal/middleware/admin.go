package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware guards the manual-fetch and cache-invalidation
// endpoints with a shared API key.
type AdminMiddleware struct {
	apiKey string
}

// NewAdminMiddleware creates the middleware. An empty key locks the
// admin surface entirely rather than leaving it open.
func NewAdminMiddleware(apiKey string) *AdminMiddleware {
	return &AdminMiddleware{apiKey: apiKey}
}

// RequireAdminAuth accepts the key as a Bearer token, an X-API-Key
// header, or an api_key query parameter.
func (am *AdminMiddleware) RequireAdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.apiKey != "" {
			if authHeader := c.GetHeader("Authorization"); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && am.keyMatches(parts[1]) {
					c.Next()
					return
				}
			}
			if am.keyMatches(c.GetHeader("X-API-Key")) {
				c.Next()
				return
			}
			if am.keyMatches(c.Query("api_key")) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Valid admin API key required for this endpoint",
		})
		c.Abort()
	}
}

func (am *AdminMiddleware) keyMatches(candidate string) bool {
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(am.apiKey)) == 1
}
