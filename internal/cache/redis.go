package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/songii00/random-push/internal/domain"
)

// redisCache stores push snapshots as JSON values in Redis with a TTL of the
// claim window. A snapshot stays coherent only as long as every claim evicts
// the (token, room) entry it touched.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed push cache
func NewRedisCache(addr, password string, db int) Cache {
	return &redisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// NewRedisCacheFromClient creates a push cache from an existing Redis client
func NewRedisCacheFromClient(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) GetPush(ctx context.Context, token, roomID string) (*domain.Push, bool, error) {
	raw, err := c.client.Get(ctx, Key(token, roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached push: %w", err)
	}

	var push domain.Push
	if err := json.Unmarshal(raw, &push); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached push: %w", err)
	}
	return &push, true, nil
}

func (c *redisCache) SetPush(ctx context.Context, push *domain.Push) error {
	raw, err := json.Marshal(push)
	if err != nil {
		return fmt.Errorf("failed to encode push snapshot: %w", err)
	}

	err = c.client.Set(ctx, Key(push.Token, push.RoomID), raw, domain.ClaimWindow).Err()
	if err != nil {
		return fmt.Errorf("failed to cache push snapshot: %w", err)
	}
	return nil
}

func (c *redisCache) EvictPush(ctx context.Context, token, roomID string) error {
	if err := c.client.Del(ctx, Key(token, roomID)).Err(); err != nil {
		return fmt.Errorf("failed to evict cached push: %w", err)
	}
	return nil
}
