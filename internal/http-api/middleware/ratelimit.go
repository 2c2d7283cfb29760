package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SignupRateLimiter throttles anonymous signup requests per client IP with
// a token bucket. Stale buckets are evicted so the map cannot grow without
// bound.
type SignupRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const visitorTTL = 10 * time.Minute

// NewSignupRateLimiter allows ratePerMinute requests per minute with the
// given burst per client IP.
func NewSignupRateLimiter(ratePerMinute, burst int) *SignupRateLimiter {
	return &SignupRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(ratePerMinute) / 60.0),
		burst:    burst,
	}
}

// Middleware rejects over-limit callers with 429.
func (l *SignupRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many signup requests, slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *SignupRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	// opportunistic eviction of idle buckets
	for addr, other := range l.visitors {
		if now.Sub(other.lastSeen) > visitorTTL {
			delete(l.visitors, addr)
		}
	}

	return v.limiter.Allow()
}
