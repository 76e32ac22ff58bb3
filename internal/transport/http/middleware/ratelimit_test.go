package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 3)
	h := rl.Limit(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/verification/request", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_BlocksOverBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	h := rl.Limit(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/verification/request", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/verification/request", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	h := rl.Limit(okHandler())

	first := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodPost, "/v1/clients/lookup", nil)
	req1.RemoteAddr = "10.0.0.3:1234"
	h.ServeHTTP(first, req1)
	assert.Equal(t, http.StatusOK, first.Code)

	blocked := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/v1/clients/lookup", nil)
	req2.RemoteAddr = "10.0.0.3:1234"
	h.ServeHTTP(blocked, req2)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)

	// A different address has its own bucket.
	other := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodPost, "/v1/clients/lookup", nil)
	req3.RemoteAddr = "10.0.0.4:1234"
	h.ServeHTTP(other, req3)
	assert.Equal(t, http.StatusOK, other.Code)
}
