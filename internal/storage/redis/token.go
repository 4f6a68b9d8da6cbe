package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStorage is the revocation list for access tokens. Entries expire
// together with the token they revoke.
type TokenStorage struct {
	client *redis.Client
}

func NewTokenStorage(client *redis.Client) *TokenStorage {
	return &TokenStorage{client: client}
}

func (s *TokenStorage) InvalidateToken(ctx context.Context, token string, expiration time.Duration) error {
	if err := s.client.Set(ctx, revokedKey(token), 1, expiration).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenStorage) IsTokenInvalidated(ctx context.Context, token string) (bool, error) {
	err := s.client.Get(ctx, revokedKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return true, nil
}

func revokedKey(token string) string {
	return keyPrefix + ":revoked:" + token
}
