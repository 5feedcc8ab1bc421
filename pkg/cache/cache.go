package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wenhsiu/aiot-in-go/pkg/metrics"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
)

// Cache wraps the Redis client used for latest-position lookups and
// permission snapshots. All lookups degrade to the backing store on
// error; a broken cache must never fail a request.
type Cache struct {
	rdb *redis.Client
}

// Connect creates a cache client from REDIS_URL.
// Returns nil (cache disabled) if REDIS_URL is not set.
func Connect() (*Cache, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	return &Cache{rdb: redis.NewClient(opts)}, nil
}

// NewWithClient wraps an existing client. Useful for tests with miniredis
// or a client pointed at a local instance.
func NewWithClient(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Ping verifies connectivity
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying client
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func positionKey(droneID uint) string {
	return fmt.Sprintf("drone:%d:position:latest", droneID)
}

func permissionsKey(userID uint) string {
	return fmt.Sprintf("user:%d:permissions", userID)
}

// LatestPosition returns the cached latest position for a drone, or nil on
// miss or cache error.
func (c *Cache) LatestPosition(ctx context.Context, droneID uint) *model.DronePosition {
	if c == nil {
		return nil
	}

	data, err := c.rdb.Get(ctx, positionKey(droneID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			metrics.CacheHitsTotal.WithLabelValues("position", "error").Inc()
		} else {
			metrics.CacheHitsTotal.WithLabelValues("position", "miss").Inc()
		}
		return nil
	}

	var position model.DronePosition
	if err := json.Unmarshal(data, &position); err != nil {
		metrics.CacheHitsTotal.WithLabelValues("position", "error").Inc()
		return nil
	}

	metrics.CacheHitsTotal.WithLabelValues("position", "hit").Inc()
	return &position
}

// StoreLatestPosition caches the latest position for a drone
func (c *Cache) StoreLatestPosition(ctx context.Context, position *model.DronePosition, ttl time.Duration) {
	if c == nil {
		return
	}

	data, err := json.Marshal(position)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, positionKey(position.DroneID), data, ttl).Err()
}

// Permissions returns the cached permission snapshot for a user.
// The second return is false on miss or cache error.
func (c *Cache) Permissions(ctx context.Context, userID uint) ([]string, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, permissionsKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			metrics.CacheHitsTotal.WithLabelValues("permissions", "error").Inc()
		} else {
			metrics.CacheHitsTotal.WithLabelValues("permissions", "miss").Inc()
		}
		return nil, false
	}

	var perms []string
	if err := json.Unmarshal(data, &perms); err != nil {
		metrics.CacheHitsTotal.WithLabelValues("permissions", "error").Inc()
		return nil, false
	}

	metrics.CacheHitsTotal.WithLabelValues("permissions", "hit").Inc()
	return perms, true
}

// StorePermissions caches a user's permission snapshot
func (c *Cache) StorePermissions(ctx context.Context, userID uint, perms []string, ttl time.Duration) {
	if c == nil {
		return
	}

	data, err := json.Marshal(perms)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, permissionsKey(userID), data, ttl).Err()
}

// InvalidatePermissions drops a user's permission snapshot. Called when a
// user's role assignments change. Grants and revokes on a role itself are
// picked up when the snapshot expires.
func (c *Cache) InvalidatePermissions(ctx context.Context, userID uint) {
	if c == nil {
		return
	}
	_ = c.rdb.Del(ctx, permissionsKey(userID)).Err()
}
