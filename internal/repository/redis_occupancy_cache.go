package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgredis "github.com/gatherly-app/backend-rsvp/pkg/redis"
)

// ErrCacheMiss indicates the counters for the event are not cached
var ErrCacheMiss = errors.New("occupancy not cached")

// DefaultOccupancyCacheTTL bounds staleness when no TTL is configured
const DefaultOccupancyCacheTTL = 30 * time.Second

// RedisOccupancyCache implements OccupancyCache on Redis. It serves display
// reads only; every reservation write for an event invalidates its entry,
// and the TTL bounds staleness if an invalidation is lost.
type RedisOccupancyCache struct {
	client *pkgredis.Client
	ttl    time.Duration
}

// NewRedisOccupancyCache creates a new RedisOccupancyCache
func NewRedisOccupancyCache(client *pkgredis.Client, ttl time.Duration) *RedisOccupancyCache {
	if ttl <= 0 {
		ttl = DefaultOccupancyCacheTTL
	}
	return &RedisOccupancyCache{client: client, ttl: ttl}
}

func occupancyKey(eventID string) string {
	return "rsvp:occupancy:" + eventID
}

// Get returns the cached counters, or ErrCacheMiss
func (c *RedisOccupancyCache) Get(ctx context.Context, eventID string) (*CachedOccupancy, error) {
	data, err := c.client.Client().Get(ctx, occupancyKey(eventID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read occupancy cache: %w", err)
	}

	counts := &CachedOccupancy{}
	if err := json.Unmarshal(data, counts); err != nil {
		return nil, fmt.Errorf("failed to decode occupancy cache: %w", err)
	}
	return counts, nil
}

// Set stores the counters with the configured TTL
func (c *RedisOccupancyCache) Set(ctx context.Context, eventID string, counts *CachedOccupancy) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to encode occupancy cache: %w", err)
	}
	if err := c.client.Client().Set(ctx, occupancyKey(eventID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write occupancy cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached counters for the event
func (c *RedisOccupancyCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Client().Del(ctx, occupancyKey(eventID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate occupancy cache: %w", err)
	}
	return nil
}
