package adapthttp

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdle       = 10 * time.Minute
	limiterSweepEvery = time.Minute
	limiterMaxEntries = 1 << 16
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client address. A zero limit
// disables limiting.
type ipRateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	now       func() time.Time
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

func newIPRateLimiter(limit rate.Limit, burst int) *ipRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ipRateLimiter{
		limit:   limit,
		burst:   burst,
		now:     time.Now,
		entries: make(map[string]*limiterEntry),
	}
}

func (l *ipRateLimiter) Allow(addr string) bool {
	if l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.sweep(now)
	}
	e, ok := l.entries[addr]
	if !ok {
		if len(l.entries) >= limiterMaxEntries {
			l.evictOldest()
		}
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[addr] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) sweep(now time.Time) {
	l.lastSweep = now
	for addr, e := range l.entries {
		if now.Sub(e.lastSeen) > limiterIdle {
			delete(l.entries, addr)
		}
	}
}

// evictOldest drops the least recently seen entry to keep the map bounded.
func (l *ipRateLimiter) evictOldest() {
	var (
		oldest string
		seen   time.Time
		found  bool
	)
	for addr, e := range l.entries {
		if !found || e.lastSeen.Before(seen) {
			oldest, seen, found = addr, e.lastSeen, true
		}
	}
	if found {
		delete(l.entries, oldest)
	}
}
