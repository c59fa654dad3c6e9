package dedup

import (
	"context"
	"fmt"
	"time"

	"giftbasket/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "giftbasket:delivery:"

// RedisSeenSet deduplicates webhook deliveries across replicas using SETNX
// with a TTL.
type RedisSeenSet struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSeenSet wraps an existing Redis client.
func NewRedisSeenSet(client *redis.Client, ttl time.Duration) *RedisSeenSet {
	return &RedisSeenSet{client: client, ttl: ttl}
}

var _ ports.DeliveryDedup = (*RedisSeenSet)(nil)

func (s *RedisSeenSet) Claim(ctx context.Context, deliveryID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+deliveryID, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim delivery id: %w", err)
	}
	return ok, nil
}
