package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/portal/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the RevocationStore interface
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a new Redis revocation store
func NewRedisStore(client redis.UniversalClient) ports.RevocationStore {
	return &RedisStore{
		client: client,
		prefix: "portal:revoked:",
	}
}

// InvalidateToken marks a token as invalidated in Redis
func (s *RedisStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	if expiry <= 0 {
		// Already past its own expiry; nothing left to revoke
		return nil
	}

	if err := s.client.Set(ctx, s.prefix+tokenID, "1", expiry).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	return nil
}

// IsTokenInvalidated checks if a token is invalidated in Redis
func (s *RedisStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	val, err := s.client.Exists(ctx, s.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token invalidation: %w", err)
	}

	return val > 0, nil
}
