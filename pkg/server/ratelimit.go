package server

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneThreshold is the number of tracked clients above which idle
// limiters are dropped.
const pruneThreshold = 10000

// ipLimiter gives every client address a token bucket holding perDay
// requests that refills evenly over a day.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

// newIPLimiter returns nil when perDay is not positive, which disables
// limiting.
func newIPLimiter(perDay int) *ipLimiter {
	if perDay <= 0 {
		return nil
	}
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(24 * time.Hour / time.Duration(perDay)),
		burst:    perDay,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= pruneThreshold {
			l.prune()
		}
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[ip] = lim
	}
	return lim.Allow()
}

// prune drops limiters that have refilled completely; a fresh one behaves
// the same. Callers hold mu.
func (l *ipLimiter) prune() {
	for ip, lim := range l.limiters {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.limiters, ip)
		}
	}
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			s.logger.Warning("Rate limit exceeded for %s", clientIP(r))
			writeError(w, &Error{Status: http.StatusTooManyRequests, Message: "Rate limit exceeded. Please try again later."})
			return
		}
		next.ServeHTTP(w, r)
	})
}
