package sessionstore

import (
	"context"
	"errors"
	"fmt"

	"giftbasket/internal/domain"
	"giftbasket/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "giftbasket:session:"

// RedisStore keeps shop sessions in Redis so installs survive a restart and
// can be shared across replicas. Tokens are stored without expiry; Shopify
// tokens live until the app is uninstalled.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ ports.SessionStore = (*RedisStore)(nil)

func (s *RedisStore) Get(ctx context.Context, shop string) (string, error) {
	token, err := s.client.Get(ctx, keyPrefix+shop).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Put(ctx context.Context, shop string, accessToken string) error {
	if err := s.client.Set(ctx, keyPrefix+shop, accessToken, 0).Err(); err != nil {
		return fmt.Errorf("failed to put session: %w", err)
	}
	return nil
}

func (s *RedisStore) Has(ctx context.Context, shop string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+shop).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}
