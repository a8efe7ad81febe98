// Package redis backs the identifier lookup cache with Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rgdevment/scam-registry/internal/domain"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "scamreg:lookup:"

// LookupCache stores lookup results as JSON under KeyPrefix+identifier.
type LookupCache struct {
	client redis.Cmdable
}

func NewLookupCache(client redis.Cmdable) *LookupCache {
	return &LookupCache{client: client}
}

// Connect creates a client and pings it before handing it out.
func Connect(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}
	return client, nil
}

func key(identifierValue string) string {
	return KeyPrefix + identifierValue
}

func (c *LookupCache) Get(ctx context.Context, identifierValue string) (*domain.LookupResult, bool, error) {
	raw, err := c.client.Get(ctx, key(identifierValue)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: get lookup: %w", err)
	}

	var result domain.LookupResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("redis: decode lookup: %w", err)
	}
	return &result, true, nil
}

func (c *LookupCache) Set(ctx context.Context, identifierValue string, result *domain.LookupResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: encode lookup: %w", err)
	}
	return c.client.Set(ctx, key(identifierValue), raw, ttl).Err()
}

func (c *LookupCache) Invalidate(ctx context.Context, identifierValue string) error {
	return c.client.Del(ctx, key(identifierValue)).Err()
}
