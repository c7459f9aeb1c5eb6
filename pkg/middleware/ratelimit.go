package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"tourplanner/pkg/utils"
)

// RateLimiter hands out one token bucket per key. Idle buckets are dropped after ten
// minutes.
type RateLimiter struct {
	visitors *cache.Cache
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors: cache.New(10*time.Minute, 5*time.Minute),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors.Get(key); ok {
		rl.visitors.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.visitors.SetDefault(key, limiter)
	return limiter
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Limit keys requests by the authenticated user, falling back to the client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("user_id")
		if key == "" {
			key = c.ClientIP()
		}
		if !rl.Allow(key) {
			c.Header("Retry-After", "60")
			utils.RespondError(c, http.StatusTooManyRequests, "Too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
