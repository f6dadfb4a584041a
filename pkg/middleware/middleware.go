// Package middleware provides the HTTP middleware stack: CORS,
// per-client rate limiting, and request metrics.
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/mtavares/receiptwise/pkg/metrics"
)

// CORS wraps a handler with permissive CORS headers suitable for a
// browser frontend.
func CORS(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         3600,
	}).Handler(next)
}

// RateLimiter applies a per-client token bucket keyed by remote IP.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	perSec   rate.Limit
	burst    int
	lastSeen time.Duration
}

type clientLimiter struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests with the
// given burst per client IP. Idle client entries are dropped after an
// hour.
func NewRateLimiter(perSecond, burst int) *RateLimiter {
	return &RateLimiter{
		clients:  make(map[string]*clientLimiter),
		perSec:   rate.Limit(perSecond),
		burst:    burst,
		lastSeen: time.Hour,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if cl, ok := rl.clients[ip]; ok {
		cl.seen = now
		return cl.limiter
	}

	// Evict idle clients to bound the map.
	for key, cl := range rl.clients {
		if now.Sub(cl.seen) > rl.lastSeen {
			delete(rl.clients, key)
		}
	}

	cl := &clientLimiter{limiter: rate.NewLimiter(rl.perSec, rl.burst), seen: now}
	rl.clients[ip] = cl
	return cl.limiter
}

// Middleware rejects requests exceeding the client's rate with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.limiterFor(ip).Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Metrics records request counts and latency into the given collectors.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			m.ObserveRequest(r.Method, rec.status, time.Since(start))
		})
	}
}
