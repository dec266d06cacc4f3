package middlewares

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type LimiterConfig struct {
	RPS     float64       // steady refill rate
	Burst   int           // bucket size
	IdleTTL time.Duration // drop a key's bucket after this long unused
}

// keyLimiter is one key's token bucket and when it was last used.
type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one in-memory token bucket per key (one client IP, one
// bucket).
type RateLimiter struct {
	conf    LimiterConfig
	mu      sync.Mutex
	buckets map[string]*keyLimiter
}

// NewRateLimiter starts a janitor that evicts idle buckets until ctx is done.
func NewRateLimiter(ctx context.Context, conf LimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		conf:    conf,
		buckets: make(map[string]*keyLimiter),
	}

	// evict idle buckets periodically so the map does not grow forever
	go func() {
		interval := conf.IdleTTL / 2
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.evictIdle(now)
			}
		}
	}()

	return rl
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, v := range rl.buckets {
		if now.Sub(v.lastSeen) > rl.conf.IdleTTL {
			delete(rl.buckets, k)
		}
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}

	// first request for this key gets a full bucket
	lim := rate.NewLimiter(rate.Limit(rl.conf.RPS), rl.conf.Burst)
	rl.buckets[key] = &keyLimiter{limiter: lim, lastSeen: now}
	return lim
}

// KeySelector decides what a bucket is per, e.g. client IP.
type KeySelector func(c *gin.Context) string

// Middleware takes a token from the request's bucket or answers 429.
func (rl *RateLimiter) Middleware(selectKey KeySelector) gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := rl.getLimiter(selectKey(c))
		if !lim.Allow() {
			// a rough hint; the bucket refills continuously
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
