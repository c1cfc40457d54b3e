// Package middleware holds the Echo middleware chain: app-context
// injection, per-IP rate limiting, and the admin API key gate (spec §6,
// §9). The rate limiter's token-bucket design is grounded on
// custodia-labs-sercha-cli's internal/connectors/github/ratelimit.go,
// adapted from an outbound API throttle into an inbound per-client gate.
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token-bucket limiter per client IP, matching
// spec §6's "100 requests per minute per client" default. Detect handlers
// call Allow explicitly after request validation, per §9's documented
// validate -> rate-limit -> cache-lookup -> handle -> cache-store order —
// it is not wired as a blanket Echo middleware, since that would run
// before body validation.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter builds a limiter allowing requests per windowSeconds,
// with a burst equal to the same count (a full window's worth of tokens
// available up front, refilling continuously).
func NewRateLimiter(requests, windowSeconds int) *RateLimiter {
	if requests <= 0 {
		requests = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return &RateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Every(time.Duration(windowSeconds) * time.Second / time.Duration(requests)),
		burst:   requests,
	}
}

func (r *RateLimiter) bucketFor(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		b = rate.NewLimiter(r.limit, r.burst)
		r.buckets[key] = b
	}
	return b
}

// Allow consumes one token from ip's bucket, returning false once it is
// exhausted.
func (r *RateLimiter) Allow(ip string) bool {
	return r.bucketFor(ip).Allow()
}

// ClientIP extracts the request's remote host, stripping the port that
// net/http always attaches to RemoteAddr.
func ClientIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
