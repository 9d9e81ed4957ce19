package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int) (*Limiter, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewLimiter(Config{RequestsPerMinute: limit, IdleTimeout: 5 * time.Minute})
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowWindow(t *testing.T) {
	rl, now := newTestLimiter(2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "clients are independent")

	*now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"), "a new window starts")
}

func TestSweep(t *testing.T) {
	rl, now := newTestLimiter(2)
	rl.Allow("a")
	*now = now.Add(3 * time.Minute)
	rl.Allow("b")
	*now = now.Add(3 * time.Minute)

	assert.Equal(t, 1, rl.Sweep())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(1)
	h := rl.Middleware(func(*http.Request) string { return "k" }, false, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	do := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/upload", nil))
		return rr
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost).Code)
	rr := do(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, do(http.MethodGet).Code, "GET is not limited")
}

func TestRunStops(t *testing.T) {
	rl, _ := newTestLimiter(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, rl.Run(ctx, time.Hour))
}
