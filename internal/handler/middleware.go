package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// RateLimiter bounds intake submissions per source address using a sliding
// window. It only gates acceptance of new submissions; records that already
// exist are unaffected.
type RateLimiter struct {
	max               int
	window            time.Duration
	trustedProxyCount int
	mu                sync.Mutex
	clients           map[string]*clientWindow
}

type clientWindow struct {
	timestamps []time.Time
}

// NewRateLimiter creates a rate limiter allowing max requests per source key
// within window. Assumes a single trusted reverse proxy by default.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		max:               max,
		window:            window,
		trustedProxyCount: 1,
		clients:           make(map[string]*clientWindow),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow records an attempt for sourceKey and reports whether it is within
// the window's budget. Safe for concurrent use.
func (rl *RateLimiter) Allow(sourceKey string) bool {
	allowed, _ := rl.take(sourceKey, time.Now())
	return allowed
}

// take is the locked core of Allow; it returns the retry-after hint for
// rejected attempts.
func (rl *RateLimiter) take(sourceKey string, now time.Time) (bool, time.Duration) {
	windowStart := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, ok := rl.clients[sourceKey]
	if !ok {
		cw = &clientWindow{}
		rl.clients[sourceKey] = cw
	}

	// Prune timestamps outside the window; in-place filter on shared backing array
	valid := cw.timestamps[:0]
	for _, ts := range cw.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	cw.timestamps = valid

	if len(cw.timestamps) >= rl.max {
		oldest := cw.timestamps[0]
		return false, oldest.Add(rl.window).Sub(now)
	}

	cw.timestamps = append(cw.timestamps, now)
	return true, 0
}

// cleanupLoop periodically removes stale entries from the clients map.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		windowStart := time.Now().Add(-rl.window)
		rl.mu.Lock()
		for key, cw := range rl.clients {
			valid := cw.timestamps[:0]
			for _, ts := range cw.timestamps {
				if ts.After(windowStart) {
					valid = append(valid, ts)
				}
			}
			cw.timestamps = valid
			if len(cw.timestamps) == 0 {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns an http.Handler that enforces the limit per client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := rl.take(rl.clientIP(r), time.Now())
		if !allowed {
			w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
			fail(w, http.StatusTooManyRequests, "Too many submissions. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP extracts the real client IP, reading from the rightmost trusted
// proxy position in X-Forwarded-For to prevent spoofing.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && rl.trustedProxyCount > 0 {
		parts := strings.Split(xff, ",")
		// The rightmost entry added by our infrastructure is at
		// index len(parts) - trustedProxyCount.
		idx := len(parts) - rl.trustedProxyCount
		if idx >= 0 && idx < len(parts) {
			return strings.TrimSpace(parts[idx])
		}
	}
	return clientIP(r)
}

// clientIP returns the peer address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// RequestLogger is middleware that logs each HTTP request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sr, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}
