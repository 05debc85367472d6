package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware rejects requests beyond rps with 429. Burst matches
// the rate so short spikes are absorbed.
func RateLimitMiddleware(rps float64) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), int(rps)+1)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
