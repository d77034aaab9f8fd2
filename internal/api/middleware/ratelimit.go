package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

// visitors holds one token bucket per client IP.
type visitors struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
}

func (v *visitors) allow(ip string, now time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	le, ok := v.entries[ip]
	if !ok {
		le = &limiterEntry{limiter: rate.NewLimiter(v.rps, v.burst)}
		v.entries[ip] = le
	}
	le.last = now
	return le.limiter.AllowN(now, 1)
}

func (v *visitors) sweep(idle time.Duration, now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for k, e := range v.entries {
		if now.Sub(e.last) > idle {
			delete(v.entries, k)
		}
	}
}

func getIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit applies an IP-based token bucket limiter. Idle visitors are
// dropped every few minutes until ctx is done.
func RateLimit(ctx context.Context, rps float64, burst int) func(http.Handler) http.Handler {
	v := &visitors{entries: map[string]*limiterEntry{}, rps: rate.Limit(rps), burst: burst}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				v.sweep(10*time.Minute, now)
			}
		}
	}()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.allow(getIP(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				deny(w, http.StatusTooManyRequests, "rate_limited", http.StatusText(http.StatusTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
