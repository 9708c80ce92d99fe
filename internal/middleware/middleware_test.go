package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func hit(h http.Handler, remote string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/registro", nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestPerMinuteLimitsEachClient(t *testing.T) {
	h := PerMinute(2)(okHandler)

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:3333"))

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1111"), "other clients keep their own budget")
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "script-src 'self'")
}

func TestIPLimiterEvictsIdleClients(t *testing.T) {
	now := time.Now()
	il := newIPLimiter(rate.Every(time.Minute), 1)
	il.now = func() time.Time { return now }
	il.lastSweep = now

	il.get("10.0.0.1")
	now = now.Add(idleTTL / 2)
	il.get("10.0.0.2")
	assert.Len(t, il.limiters, 2)

	now = now.Add(idleTTL / 2)
	il.get("10.0.0.2")
	assert.Len(t, il.limiters, 1, "idle client should be dropped")
	assert.Contains(t, il.limiters, "10.0.0.2")
}

func TestRateLimitedResponseIsJSON(t *testing.T) {
	h := PerMinute(1)(okHandler)
	hit(h, "10.0.0.9:1")

	req := httptest.NewRequest(http.MethodPost, "/api/registro", nil)
	req.RemoteAddr = "10.0.0.9:2"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Inténtalo de nuevo")
}
