package httpmiddleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	// Requests is the number of requests allowed per Window.
	Requests int

	// Window is the sliding window duration.
	Window time.Duration

	// KeyFunc extracts the client key from a request. Defaults to the
	// remote address without port.
	KeyFunc func(*http.Request) string
}

type rateLimiter struct {
	mu      sync.Mutex
	clients map[string][]time.Time
	limit   int
	window  time.Duration
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
	}
}

// allow records a hit for key and reports whether it stays within the
// window. Timestamps older than the window are pruned on each call.
func (l *rateLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	hits := l.clients[key]

	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.clients[key] = kept
		return false
	}

	l.clients[key] = append(kept, now)
	return true
}

// cleanup drops clients whose entire history has aged out.
func (l *rateLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	for key, hits := range l.clients {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.clients, key)
		}
	}
}

func (l *rateLimiter) startCleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			l.cleanup(now)
		}
	}
}

func defaultKeyFunc(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *rateLimiter) middleware(keyFunc func(*http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(keyFunc(r), time.Now()) {
				w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit returns a sliding-window rate limiting middleware. Stale client
// entries are pruned lazily as requests arrive.
func RateLimit(cfg RateLimitConfig) Middleware {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = defaultKeyFunc
	}
	return newRateLimiter(cfg.Requests, cfg.Window).middleware(keyFunc)
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that evicts
// idle clients. The returned stop function terminates the goroutine.
func RateLimitWithCleanup(cfg RateLimitConfig) (Middleware, func()) {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = defaultKeyFunc
	}

	l := newRateLimiter(cfg.Requests, cfg.Window)
	stop := make(chan struct{})
	go l.startCleanup(stop)

	var once sync.Once
	return l.middleware(keyFunc), func() {
		once.Do(func() { close(stop) })
	}
}
