package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Idle buckets are swept so a burst of one-off visitors (typical for the
// public lookup and code-request endpoints) does not grow the map forever.
const (
	sweepInterval = 5 * time.Minute
	idleEviction  = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands each remote IP its own token bucket. It fronts the
// sensitive public endpoints so one caller cannot farm verification codes or
// enumerate the client directory by hammering them.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	r       rate.Limit
	burst   int
}

// NewRateLimiter creates a per-IP limiter: r requests/second, burst up to burst requests.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		r:       r,
		burst:   burst,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if b, ok := rl.buckets[ip]; ok {
		b.lastSeen = time.Now()
		return b.limiter
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.buckets[ip] = &bucket{limiter: l, lastSeen: time.Now()}
	return l
}

func (rl *RateLimiter) sweep() {
	for {
		time.Sleep(sweepInterval)
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			if time.Since(b.lastSeen) > idleEviction {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Limit rejects the request once the caller's bucket is empty.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(r.RemoteAddr).Allow() {
			http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
