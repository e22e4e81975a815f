package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gitchest/gitchest/internal/model"
)

// Cache key prefixes and TTLs.
const (
	userKeyPrefix     = "user:"
	negCacheKeySuffix = ":neg"

	// DefaultUserTTL is the TTL for cached full users.
	DefaultUserTTL = 10 * time.Minute

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 30 * time.Second
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func userKey(id int64) string {
	return userKeyPrefix + strconv.FormatInt(id, 10)
}

// GetFullUser retrieves a cached get_user result.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetFullUser(ctx context.Context, id int64) (*model.FullUser, error) {
	data, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var user model.FullUser
	if err := json.Unmarshal(data, &user); err != nil {
		// a corrupt entry is treated as a miss and dropped
		c.client.Del(ctx, userKey(id))
		return nil, ErrCacheMiss
	}

	return &user, nil
}

// SetFullUser stores a get_user result and clears any negative entry.
func (c *Cache) SetFullUser(ctx context.Context, id int64, user *model.FullUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	key := userKey(id)
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.userTTL)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	return nil
}

// DeleteUser removes a user and its negative entry from cache.
func (c *Cache) DeleteUser(ctx context.Context, id int64) error {
	key := userKey(id)

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete user from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a user id is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, id int64) (bool, error) {
	exists, err := c.client.Exists(ctx, userKey(id)+negCacheKeySuffix).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a user id as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, id int64) error {
	err := c.client.SetEx(ctx, userKey(id)+negCacheKeySuffix, "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
