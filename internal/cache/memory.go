package cache

import (
	"context"
	"time"

	"futureflow/internal/forecast"
)

const defaultMemoryCacheSize = 64

// MemoryForecastCache keeps forecasts in an in-process LRU. The
// default for single-node deployments.
type MemoryForecastCache struct {
	lru *LRUCache[[]forecast.WeekExposure]
}

func NewMemoryForecastCache(ttl time.Duration) *MemoryForecastCache {
	return &MemoryForecastCache{
		lru: NewLRUCache[[]forecast.WeekExposure](defaultMemoryCacheSize, ttl),
	}
}

func (c *MemoryForecastCache) Get(_ context.Context, key string) ([]forecast.WeekExposure, bool) {
	return c.lru.Get(key)
}

func (c *MemoryForecastCache) Set(_ context.Context, key string, weeks []forecast.WeekExposure) error {
	c.lru.Set(key, weeks)
	return nil
}

func (c *MemoryForecastCache) Purge(_ context.Context) error {
	c.lru.PurgeAll()
	return nil
}

// CleanExpired implements Cleaner.
func (c *MemoryForecastCache) CleanExpired() int {
	return c.lru.CleanExpired()
}
