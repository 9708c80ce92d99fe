package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long a client's limiter survives without requests.
const idleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	rate      rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newIPLimiter(r rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		limiters:  make(map[string]*clientLimiter),
		rate:      r,
		burst:     burst,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (ipl *ipLimiter) get(ip string) *rate.Limiter {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	now := ipl.now()
	if now.Sub(ipl.lastSweep) >= idleTTL {
		ipl.sweep(now)
	}

	l, ok := ipl.limiters[ip]
	if !ok {
		l = &clientLimiter{limiter: rate.NewLimiter(ipl.rate, ipl.burst)}
		ipl.limiters[ip] = l
	}
	l.lastSeen = now
	return l.limiter
}

// sweep drops limiters idle for at least idleTTL. Callers hold mu.
func (ipl *ipLimiter) sweep(now time.Time) {
	for ip, l := range ipl.limiters {
		if now.Sub(l.lastSeen) >= idleTTL {
			delete(ipl.limiters, ip)
		}
	}
	ipl.lastSweep = now
}

// RateLimit allows each client address r events per second with the given burst.
func RateLimit(r rate.Limit, burst int) func(http.Handler) http.Handler {
	return newIPLimiter(r, burst).middleware
}

func (ipl *ipLimiter) middleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ipl.get(clientIP(r)).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Demasiados envíos. Inténtalo de nuevo en un minuto."}`))
			return
		}
		h.ServeHTTP(w, r)
	})
}

// PerMinute is RateLimit with n events per minute and a burst of n.
func PerMinute(n int) func(http.Handler) http.Handler {
	return RateLimit(rate.Every(time.Minute/time.Duration(n)), n)
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
