package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eventapi/utils"
)

// AdminOnly rejects requests without a valid admin token. The token is read
// from "Authorization: Bearer <token>"; a bare token is accepted too.
// An empty secret means admin access is off and every request is rejected.
func AdminOnly(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized."})
			return
		}
		token := strings.TrimSpace(c.GetHeader("Authorization"))
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized."})
			return
		}
		if err := utils.VerifyAdminToken(secret, token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized."})
			return
		}
		c.Set("admin", true)
		c.Next()
	}
}
