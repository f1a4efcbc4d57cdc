package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"futureflow/internal/forecast"
)

const redisKeyPrefix = "futureflow:forecast:"

// RedisForecastCache shares forecasts across processes through redis.
type RedisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisForecastCache(addr string, ttl time.Duration) *RedisForecastCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisForecastCache{client: rdb, ttl: ttl}
}

func (c *RedisForecastCache) Get(ctx context.Context, key string) ([]forecast.WeekExposure, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}

	var weeks []forecast.WeekExposure
	if err := json.Unmarshal(raw, &weeks); err != nil {
		// A corrupt entry behaves like a miss; it gets overwritten on
		// the next Set.
		return nil, false
	}
	return weeks, true
}

func (c *RedisForecastCache) Set(ctx context.Context, key string, weeks []forecast.WeekExposure) error {
	raw, err := json.Marshal(weeks)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err()
}

func (c *RedisForecastCache) Purge(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisForecastCache) Close() error {
	return c.client.Close()
}
