package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/obot-platform/mcp-auth-routes/pkg/handlerutils"
	"github.com/obot-platform/mcp-auth-routes/pkg/types"
)

// RateLimiter is a simple in-memory sliding-window rate limiter.
type RateLimiter struct {
	requests map[string][]time.Time
	lock     sync.Mutex
	window   time.Duration
	max      int
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		window:   window,
		max:      max,
	}
}

// Allow records a request for key and reports whether it fits within the
// window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.lock.Lock()
	defer rl.lock.Unlock()
	now := time.Now()
	windowStart := now.Add(-rl.window)

	// Drop entries that have aged out of the window
	var recent []time.Time
	for _, at := range rl.requests[key] {
		if at.After(windowStart) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= rl.max {
		rl.requests[key] = recent
		return false
	}

	rl.requests[key] = append(recent, now)
	return true
}

// Middleware rejects requests over the per-client-IP limit with a 429
// OAuth error before next runs.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(handlerutils.GetClientIP(r)) {
			handlerutils.JSON(w, http.StatusTooManyRequests, types.OAuthError{
				Error:            "too_many_requests",
				ErrorDescription: "Rate limit exceeded",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
