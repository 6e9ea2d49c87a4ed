package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polysim/internal/gate"
)

// RateLimit rejects requests once the client spends the endpoint class's
// sliding-window budget. Denial is an explicit 429, never a silent drop.
func RateLimit(limiter *gate.Limiter, endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.ClientIP(), endpoint) {
			Error(c, http.StatusTooManyRequests, "rate limit exceeded, retry later", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
