package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/payday/internal/funds"
)

const cacheVersionKey = "dashboard:version"

// Cache is a versioned Redis cache. Bumping the version orphans every key built
// before it; orphans expire with the TTL. A nil Cache or client disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}

	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX so a concurrent Bump is not overwritten.
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}

		return c.client.Get(ctx, cacheVersionKey).Int64()
	}

	if err != nil {
		return 0, err
	}

	return ver, nil
}

// BuildKey joins parts and appends the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}

	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON decodes the cached value at key into dest, or calls loader and caches its result.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}

	if c.enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}

		if !errors.Is(err, redis.Nil) {
			return err
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if c.enabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}

	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached value.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}

	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// Notify bumps the cache after a committed movement.
func (c *Cache) Notify(ctx context.Context, _ *funds.Movement) error {
	return c.Bump(ctx)
}

// Invalidate bumps the cache after a bill or account change.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.Bump(ctx)
}
