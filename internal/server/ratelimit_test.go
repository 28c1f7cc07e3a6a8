package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atscore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(60, 2, time.Minute, nil)
	defer rl.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)

	ok, retry := rl.Allow("a")
	assert.False(t, ok)
	assert.InDelta(t, time.Second, retry, float64(10*time.Millisecond))

	// Keys have independent buckets.
	ok, _ = rl.Allow("b")
	assert.True(t, ok)

	// One token refills per second at 60/min.
	now = now.Add(time.Second)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)

	stats := rl.GetStats()
	assert.Equal(t, 2, stats["active_limiters"])
	assert.Equal(t, int64(4), stats["allowed_total"])
	assert.Equal(t, int64(1), stats["rejected_total"])
	assert.InDelta(t, 60.0, stats["requests_per_min"], 1e-9)
}

func TestRateLimiterEvictIdle(t *testing.T) {
	rl := NewRateLimiter(60, 1, time.Minute, nil)
	defer rl.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(50 * time.Second)
	rl.Allow("fresh")
	now = now.Add(20 * time.Second)

	assert.Equal(t, 1, rl.evictIdle())
	assert.Equal(t, 1, rl.GetStats()["active_limiters"])

	rl.Close()
	rl.Close()
}

func TestRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		byAPIKey bool
		byIP     bool
		want     string
	}{
		{"api key preferred", map[string]string{"X-API-Key": "k1"}, "10.0.0.1:1234", true, true, "api:k1"},
		{"falls back to ip", nil, "10.0.0.1:1234", true, true, "ip:10.0.0.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "bogus, 203.0.113.7, 10.0.0.2"}, "10.0.0.1:1234", false, true, "ip:203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.1:1234", false, true, "ip:198.51.100.4"},
		{"not limited", map[string]string{"X-API-Key": "k1"}, "10.0.0.1:1234", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/stats", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, rateLimitKey(r, tt.byAPIKey, tt.byIP))
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	s, _ := newTestServer(t)
	s.RateLimit = &config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 1, ByIP: true}
	s.RateLimiter = NewRateLimiter(1, 1, time.Minute, nil)
	t.Cleanup(s.RateLimiter.Close)

	handler := s.rateLimitMiddleware()(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	first := httptest.NewRecorder()
	handler(first, httptest.NewRequest(http.MethodPost, "/scores", nil))
	require.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	handler(second, httptest.NewRequest(http.MethodPost, "/scores", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}
