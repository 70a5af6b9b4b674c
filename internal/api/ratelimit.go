// Rate limiting for the control-plane action endpoint. Fixed-window counts
// per client IP; stale windows are pruned inline on the next request, so no
// background goroutine is needed.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows up to limit requests per window per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     int
	window    time.Duration
	lastPrune time.Time
}

type visitor struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}
}

// Allow records one request from ip. When denied, it returns the whole
// seconds remaining until that client's window resets, rounded up so the
// Retry-After header never undershoots.
func (rl *RateLimiter) Allow(ip string, now time.Time) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.pruneLocked(now)

	v := rl.visitors[ip]
	if v == nil || now.After(v.windowEnd) {
		rl.visitors[ip] = &visitor{count: 1, windowEnd: now.Add(rl.window)}
		return true, 0
	}
	if v.count < rl.limit {
		v.count++
		return true, 0
	}
	return false, int(v.windowEnd.Sub(now).Seconds()) + 1
}

// pruneLocked drops expired windows at most once per window length.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	if now.Sub(rl.lastPrune) < rl.window {
		return
	}
	rl.lastPrune = now
	for ip, v := range rl.visitors {
		if now.After(v.windowEnd) {
			delete(rl.visitors, ip)
		}
	}
}

// RateLimitMiddleware wraps a handler with per-IP rate limiting. Denied
// requests get 429 with a Retry-After header, matching the ErrBusy
// convention used for engine contention.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.Allow(clientIP(r), time.Now())
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP resolves the caller's address, preferring X-Forwarded-For for
// proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}
