package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs. Unread counts are deliberately never cached here: they are derived
// from read-by state on every fetch, and a stale cached count would disagree
// with the authoritative store after a mark-read.
const (
	TTLProfile = 5 * time.Minute // public profile fields shown in the sidebar
)

const (
	PrefixUser = "user:"
)

// Service Redis cache service interface
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Public profile cache used by the sidebar projection.
	GetUserProfile(ctx context.Context, userID int64, dest interface{}) error
	SetUserProfile(ctx context.Context, userID int64, data interface{}) error
	InvalidateUserProfile(ctx context.Context, userID int64) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis connection is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping tests the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get reads a value from the cache
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set stores a value in the cache
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // no Redis, silently skip
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys from the cache
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) userKey(userID int64) string {
	return fmt.Sprintf("%s%d", PrefixUser, userID)
}

func (c *redisCache) GetUserProfile(ctx context.Context, userID int64, dest interface{}) error {
	return c.Get(ctx, c.userKey(userID), dest)
}

func (c *redisCache) SetUserProfile(ctx context.Context, userID int64, data interface{}) error {
	return c.Set(ctx, c.userKey(userID), data, TTLProfile)
}

func (c *redisCache) InvalidateUserProfile(ctx context.Context, userID int64) error {
	return c.Delete(ctx, c.userKey(userID))
}
