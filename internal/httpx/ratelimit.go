package httpx

import (
	"github.com/ariefcatur/go-bookstore-api/internal/apperr"
	"golang.org/x/time/rate"
	"net"
	"net/http"
	"sync"
	"time"
)

// limiterIdle is how long an unused per-client limiter is kept.
const limiterIdle = 10 * time.Minute

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
	ew      errorWriter
	now     func() time.Time
}

func NewRateLimiter(perSecond, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = c
	}
	c.seen = now
	return c.lim
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			rl.ew.write(w, r, apperr.TooManyRequests("too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sweep drops limiters idle for longer than limiterIdle.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-limiterIdle)
	for k, c := range rl.clients {
		if c.seen.Before(cutoff) {
			delete(rl.clients, k)
		}
	}
}

// StartSweeper runs Sweep every interval until stop is closed.
func (rl *RateLimiter) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-t.C:
				rl.Sweep()
			case <-stop:
				return
			}
		}
	}()
}

// clientIP expects middleware.RealIP to have run.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
