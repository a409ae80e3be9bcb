package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultRequestsPerMinute is the per-client limit when none is configured.
	DefaultRequestsPerMinute = 300

	limitWindow   = time.Minute
	idleAfter     = 10 * time.Minute
	sweepInterval = 5 * time.Minute
)

// rateLimiter counts requests per client IP in fixed one-minute windows.
type rateLimiter struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	windows map[string]*window

	done     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	count int
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		limit = DefaultRequestsPerMinute
	}
	return &rateLimiter{
		limit:   limit,
		now:     time.Now,
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
}

// allow admits one request from clientIP. When the client is over its
// limit it returns false and the time until its window resets.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.start) >= limitWindow {
		rl.windows[clientIP] = &window{start: now, count: 1}
		return true, 0
	}
	if w.count >= rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false, w.start.Add(limitWindow).Sub(now)
	}
	w.count++
	return true, 0
}

// sweep forgets clients idle for longer than idleAfter.
func (rl *rateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idleAfter)
	removed := 0
	for ip, w := range rl.windows {
		if w.start.Before(cutoff) {
			delete(rl.windows, ip)
			removed++
		}
	}
	return removed
}

func (rl *rateLimiter) run() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}
