package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/domain"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	h := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}).Middleware(okHandler())

	for range 2 {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate limit exceeded", body["message"])
}

func TestRateLimiter_KeysByActorThenIP(t *testing.T) {
	h := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}).Middleware(okHandler())

	req := func(actorID, addr string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		if actorID != "" {
			r = r.WithContext(domain.WithActor(r.Context(), domain.Actor{ID: actorID, IsActive: true}))
		}
		return r
	}

	assert.Equal(t, http.StatusOK, serve(h, req("", "10.0.0.1:1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, req("", "10.0.0.1:2")).Code)
	assert.Equal(t, http.StatusOK, serve(h, req("", "10.0.0.2:1")).Code, "other IPs have their own bucket")

	assert.Equal(t, http.StatusOK, serve(h, req("alice", "10.0.0.1:3")).Code, "actors are not limited by their IP's bucket")
	assert.Equal(t, http.StatusTooManyRequests, serve(h, req("alice", "10.0.0.9:1")).Code)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	start := time.Now()
	rl.now = func() time.Time { return start }
	serve(rl.Middleware(okHandler()), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Zero(t, rl.Sweep(time.Minute))
	rl.now = func() time.Time { return start.Add(2 * time.Minute) }
	assert.Equal(t, 1, rl.Sweep(time.Minute))
}

func TestRateLimiter_RunSweeperStops(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestClientIP_IgnoresForwardedFor(t *testing.T) {
	tests := []struct {
		remoteAddr, xff, want string
	}{
		{"192.168.1.1:12345", "", "192.168.1.1"},
		{"[::1]:12345", "", "::1"},
		{"10.0.0.1:1234", "203.0.113.50", "10.0.0.1"},
		{"not-a-host-port", "", "not-a-host-port"},
	}
	for _, tt := range tests {
		t.Run(tt.remoteAddr, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
