package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"socialid/internal/config"
)

// RateLimit limits requests per client IP with a token bucket. Idle limiters
// are evicted after ten minutes.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := gocache.New(10*time.Minute, time.Minute)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		var limiter *rate.Limiter
		if v, ok := limiters.Get(ip); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
			if err := limiters.Add(ip, limiter, gocache.DefaultExpiration); err != nil {
				// Lost the race to another request from the same client.
				if v, ok := limiters.Get(ip); ok {
					limiter = v.(*rate.Limiter)
				}
			}
		}
		limiters.SetDefault(ip, limiter)

		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   gin.H{"code": "RATE_LIMITED", "message": "too many requests"},
			})
			return
		}
		c.Next()
	}
}
