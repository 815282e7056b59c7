// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	visitors    map[string]*visitor
	mtx         sync.Mutex
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
}

// NewRateLimiter builds a per-IP limiter. Stale visitors are pruned lazily on
// access; no background goroutine is started, so limiters need no teardown.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors:    make(map[string]*visitor),
		rate:        r,
		burst:       b,
		lastCleanup: time.Now(),
	}
}

// pruneVisitors drops entries idle for over three minutes, at most once a
// minute. Caller must hold mtx.
func (rl *RateLimiter) pruneVisitors() {
	if time.Since(rl.lastCleanup) < time.Minute {
		return
	}
	for ip, v := range rl.visitors {
		if time.Since(v.lastSeen) > 3*time.Minute {
			delete(rl.visitors, ip)
		}
	}
	rl.lastCleanup = time.Now()
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	rl.pruneVisitors()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.getVisitor(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Each constructor returns an independent limiter so separate engines do not
// share budgets.

// GeneralRateLimit allows 20 requests per second per IP.
func GeneralRateLimit() gin.HandlerFunc {
	return NewRateLimiter(rate.Every(time.Second), 20).Middleware()
}

// AuthRateLimit allows 10 auth requests per minute per IP.
func AuthRateLimit() gin.HandlerFunc {
	return NewRateLimiter(rate.Every(time.Minute), 10).Middleware()
}

// UploadRateLimit allows 5 uploads per minute per IP.
func UploadRateLimit() gin.HandlerFunc {
	return NewRateLimiter(rate.Every(time.Minute), 5).Middleware()
}
