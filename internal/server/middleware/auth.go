package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kestrelhq/botgate/pkg/api"
)

// Auth checks for a valid Bearer token against the configured admin keys.
func Auth(staticKeys []string) gin.HandlerFunc {
	staticMap := make(map[string]bool, len(staticKeys))
	for _, k := range staticKeys {
		staticMap[k] = true
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Fail("Missing Authorization header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Fail("Invalid Authorization header format"))
			return
		}

		if !staticMap[parts[1]] {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Fail("Invalid API Key"))
			return
		}

		c.Next()
	}
}
