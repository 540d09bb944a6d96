package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaudterroir/api/internal/utils"
)

// SubmissionRateLimiter throttles public submissions per source IP so a
// single client cannot flood the moderation queue.
type SubmissionRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewSubmissionRateLimiter allows limit submissions per window per IP.
func NewSubmissionRateLimiter(limit int, window time.Duration) *SubmissionRateLimiter {
	rl := &SubmissionRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    limit,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// Handle rejects requests from IPs over their submission budget.
func (r *SubmissionRateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.allow(c.ClientIP()) {
			utils.Error(c, 429, "RATE_LIMITED", "Too many submissions, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *SubmissionRateLimiter) allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	info, exists := r.attempts[ip]
	if !exists || now.Sub(info.firstAt) > r.window {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return true
	}

	if info.count >= r.limit {
		return false
	}
	info.count++
	return true
}

func (r *SubmissionRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		r.mu.Lock()
		now := time.Now()
		for ip, info := range r.attempts {
			if now.Sub(info.firstAt) > r.window {
				delete(r.attempts, ip)
			}
		}
		r.mu.Unlock()
	}
}
