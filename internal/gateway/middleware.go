// ABOUTME: HTTP middleware for CORS and per-client rate limiting
// ABOUTME: Rate limits use token buckets keyed by client IP per route class

package gateway

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/parley-dev/parley/internal/config"
)

// limiterPool holds one token bucket per client IP for a route class.
// Buckets idle longer than maxIdle are evicted on access to bound memory.
type limiterPool struct {
	mu      sync.Mutex
	perMin  int
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const maxIdle = 10 * time.Minute

func newLimiterPool(perMin int) *limiterPool {
	return &limiterPool{
		perMin:  perMin,
		clients: make(map[string]*clientLimiter),
	}
}

// allow reports whether the client may make a request right now.
func (p *limiterPool) allow(ip string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	c, ok := p.clients[ip]
	if !ok {
		p.evictIdle(now)
		c = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(p.perMin)), p.perMin),
		}
		p.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.Allow()
}

func (p *limiterPool) evictIdle(now time.Time) {
	for ip, c := range p.clients {
		if now.Sub(c.lastSeen) > maxIdle {
			delete(p.clients, ip)
		}
	}
}

// limiterSet groups the route classes with distinct budgets.
type limiterSet struct {
	standard  *limiterPool
	list      *limiterPool
	analytics *limiterPool
	export    *limiterPool
}

func newLimiterSet(cfg config.RateLimitConfig) limiterSet {
	return limiterSet{
		standard:  newLimiterPool(cfg.Default),
		list:      newLimiterPool(cfg.AnalyticsList),
		analytics: newLimiterPool(cfg.AnalyticsDetail),
		export:    newLimiterPool(cfg.Export),
	}
}

// limit wraps a handler with the given route class's rate limiter.
func (g *Gateway) limit(pool *limiterPool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !pool.allow(clientIP(r)) {
			g.sendJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

// clientIP extracts the client address, preferring the first entry of
// X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// corsMiddleware answers preflight requests and attaches CORS headers for
// configured origins. With no configured origins, cross-origin requests
// pass through without CORS headers.
func (g *Gateway) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && g.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) originAllowed(origin string) bool {
	for _, allowed := range g.config.CORS.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
