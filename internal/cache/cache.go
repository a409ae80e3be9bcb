// Package cache provides a generic in-process cache with TTL expiry and a
// manager that sweeps registered caches in the background.
package cache

import (
	"sync"
	"time"

	"ledgerbot/internal/log"
)

// Cache is the lookup surface consumers depend on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// StatsReporter is implemented by caches that count their traffic.
type StatsReporter interface {
	Stats() Stats
}

type managed struct {
	name string
	c    Cleaner
}

// Manager sweeps expired entries out of the caches registered with it.
type Manager struct {
	logger *log.Logger

	mu      sync.Mutex
	caches  []managed
	stop    chan struct{}
	done    chan struct{}
	running bool
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{logger: logger.WithComponent(log.ComponentCache)}
}

// Register adds a named cache to the sweep.
func (m *Manager) Register(name string, c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, managed{name: name, c: c})
}

// StartCleanup sweeps every interval until Stop. Calling it twice is a no-op.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop(interval, m.stop, m.done)
}

func (m *Manager) loop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanNow(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "count", n)
			}
		case <-stop:
			return
		}
	}
}

// CleanNow runs one sweep and returns the number of removed entries.
func (m *Manager) CleanNow() int {
	m.mu.Lock()
	caches := append([]managed(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, mc := range caches {
		total += mc.c.CleanExpired()
	}
	return total
}

// Stop ends the sweep and logs the final counters of every cache that
// reports them.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stop, done := m.stop, m.done
	caches := append([]managed(nil), m.caches...)
	m.mu.Unlock()

	close(stop)
	<-done

	for _, mc := range caches {
		if r, ok := mc.c.(StatsReporter); ok {
			s := r.Stats()
			m.logger.Info("Cache stats",
				"cache", mc.name,
				"hits", s.Hits,
				"misses", s.Misses,
				"evictions", s.Evictions,
				"expirations", s.Expirations)
		}
	}
}
