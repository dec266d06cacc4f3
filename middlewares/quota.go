package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type QuotaRule struct {
	Limit  int           // requests allowed per window
	Window time.Duration // counter lifetime, starting at the first request

	// KeyFn picks the counter key; "" skips the quota for this request.
	KeyFn func(*gin.Context) string
}

// Quota counts requests per key in a fixed redis window and answers 429 once
// the limit is passed. If redis is unreachable the request is let through.
func Quota(rdb *redis.Client, rule QuotaRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rule.KeyFn(c)
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		// INCR creates a missing key at 0, so n is the count including this request
		n, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// redis down: let the request through
			c.Next()
			return
		}
		// first hit opens the window
		if n == 1 {
			_ = rdb.Expire(ctx, key, rule.Window).Err()
		}
		if int(n) > rule.Limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Usage quota exceeded. Please try again later.",
			})
			return
		}
		c.Header("X-Quota-Used", fmt.Sprintf("%d/%d", n, rule.Limit)) // e.g. 5/30
		c.Next()
	}
}
