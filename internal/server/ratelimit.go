package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"atscore/internal/errors"

	"golang.org/x/time/rate"
)

const defaultLimiterIdle = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key (API key or IP) and
// evicts buckets that have been idle longer than the configured window.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry

	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	allowed  atomic.Int64
	rejected atomic.Int64

	done   chan struct{}
	once   sync.Once
	logger *errors.Logger
	now    func() time.Time
}

// NewRateLimiter allows requestsPerMin per key with burstCapacity tokens.
// Buckets unused for idleTTL are dropped; zero means ten minutes.
func NewRateLimiter(requestsPerMin, burstCapacity int, idleTTL time.Duration, logger *errors.Logger) *RateLimiter {
	if idleTTL <= 0 {
		idleTTL = defaultLimiterIdle
	}
	if burstCapacity <= 0 {
		burstCapacity = 1
	}
	if logger == nil {
		logger = errors.Discard()
	}

	rl := &RateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burstCapacity,
		idleTTL: idleTTL,
		done:    make(chan struct{}),
		logger:  logger,
		now:     time.Now,
	}
	go rl.evictLoop()
	return rl
}

// Allow takes a token for key. When none is available it reports how long
// the client should wait before retrying.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	now := rl.now()
	entry, ok := rl.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastSeen = now
	rl.mu.Unlock()

	res := entry.limiter.ReserveN(now, 1)
	if !res.OK() {
		rl.rejected.Add(1)
		return false, rl.idleTTL
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		rl.rejected.Add(1)
		return false, delay
	}
	rl.allowed.Add(1)
	return true, 0
}

// GetStats reports the limiter configuration and counters
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	active := len(rl.entries)
	rl.mu.Unlock()

	return map[string]any{
		"enabled":          true,
		"active_limiters":  active,
		"requests_per_min": float64(rl.limit) * 60,
		"burst_capacity":   rl.burst,
		"idle_eviction":    rl.idleTTL.String(),
		"allowed_total":    rl.allowed.Load(),
		"rejected_total":   rl.rejected.Load(),
	}
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.done:
			return
		}
	}
}

// evictIdle drops buckets not used within idleTTL
func (rl *RateLimiter) evictIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	evicted := 0
	for key, entry := range rl.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
			evicted++
		}
	}
	if evicted > 0 {
		rl.logger.Debug("Evicted idle rate limiters",
			"evicted", evicted,
			"remaining", len(rl.entries))
	}
	return evicted
}

// Close stops the eviction goroutine. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

// rateLimitMiddleware rejects requests over the per-client budget with 429
// and a Retry-After header.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			ok, retryAfter := s.RateLimiter.Allow(key)
			if !ok {
				s.Logger.Info("Rate limit exceeded",
					"endpoint", r.URL.Path,
					"client_ip", clientIP(r),
					"retry_after", retryAfter)
				s.metrics.RecordRateLimitHit(r.Context(), r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", "", http.StatusTooManyRequests)
				return
			}
			next(w, r)
		}
	}
}

// rateLimitKey prefers the API key so clients behind one NAT are counted
// separately. Empty means the request is not limited.
func rateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if key := requestAPIKey(r); key != "" {
			return "api:" + key
		}
	}
	if byIP {
		return "ip:" + clientIP(r)
	}
	return ""
}

// clientIP honours X-Forwarded-For and X-Real-IP before RemoteAddr
func clientIP(r *http.Request) string {
	for ip := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
		if ip = strings.TrimSpace(ip); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
