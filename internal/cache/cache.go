// Package cache holds computed weekly exposure runs so repeated
// forecast reads for the same reference date skip the calendar walk.
package cache

import (
	"context"
	"fmt"
	"time"

	"futureflow/internal/forecast"
)

// ForecastCache stores aggregated week exposures keyed by reference
// date and horizon. Implementations must treat entries as immutable.
type ForecastCache interface {
	Get(ctx context.Context, key string) ([]forecast.WeekExposure, bool)
	Set(ctx context.Context, key string, weeks []forecast.WeekExposure) error

	// Purge drops every cached forecast. Called after any ledger
	// write, since a single new transaction can move every week.
	Purge(ctx context.Context) error
}

// Backend selects the cache implementation.
type Backend string

const (
	MemoryBackend Backend = "memory"
	RedisBackend  Backend = "redis"
)

func (b Backend) IsValid() bool {
	return b == MemoryBackend || b == RedisBackend
}

// New creates a forecast cache for the configured backend. redisAddr
// is only consulted for the redis backend.
func New(backend Backend, redisAddr string, ttl time.Duration) (ForecastCache, error) {
	switch backend {
	case MemoryBackend:
		return NewMemoryForecastCache(ttl), nil
	case RedisBackend:
		return NewRedisForecastCache(redisAddr, ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", backend)
	}
}

// Cleaner is implemented by caches that hold expired entries until
// someone sweeps them.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically sweeps expired entries out of registered
// caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager for cleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range m.caches {
				c.CleanExpired()
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop gracefully stops the cleanup routine.
func (m *Manager) Stop() {
	if m.stopCleanup != nil {
		close(m.stopCleanup)
		<-m.cleanupDone
	}
}
