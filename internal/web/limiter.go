package web

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// loginLimiter throttles login attempts per username.
type loginLimiter struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	items map[string]*limiterEntry
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLoginLimiter(perMin, burst int) *loginLimiter {
	l := &loginLimiter{items: map[string]*limiterEntry{}}
	l.SetRate(perMin, burst)
	return l
}

func perMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(n) / 60)
}

// SetRate changes the rate of every current and future limiter.
func (l *loginLimiter) SetRate(perMin, burst int) {
	if burst <= 0 {
		burst = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limit, l.burst = perMinute(perMin), burst
	for _, e := range l.items {
		e.lim.SetLimit(l.limit)
		e.lim.SetBurst(l.burst)
	}
}

func (l *loginLimiter) Allow(username string) bool {
	key := strings.ToLower(strings.TrimSpace(username))
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.limit == rate.Inf {
		return true
	}
	e := l.items[key]
	if e == nil {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.items[key] = e
	}
	e.seen = time.Now()
	return e.lim.Allow()
}

// Reset forgets the attempts recorded for username.
func (l *loginLimiter) Reset(username string) {
	l.mu.Lock()
	delete(l.items, strings.ToLower(strings.TrimSpace(username)))
	l.mu.Unlock()
}

// prune drops limiters not used within idle.
func (l *loginLimiter) prune(idle time.Duration) {
	cutoff := time.Now().Add(-idle)
	l.mu.Lock()
	for k, e := range l.items {
		if e.seen.Before(cutoff) {
			delete(l.items, k)
		}
	}
	l.mu.Unlock()
}
