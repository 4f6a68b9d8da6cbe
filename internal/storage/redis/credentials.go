package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "foodsafer"

type CredentialStore struct {
	client     *redis.Client
	log        *zap.SugaredLogger
	accessKey  string
	refreshKey string
}

func NewCredentialStore(client *redis.Client, profile string, log *zap.SugaredLogger) *CredentialStore {
	return &CredentialStore{
		client:     client,
		log:        log,
		accessKey:  fmt.Sprintf("%s:%s:access_token", keyPrefix, profile),
		refreshKey: fmt.Sprintf("%s:%s:refresh_token", keyPrefix, profile),
	}
}

func (s *CredentialStore) AccessToken(ctx context.Context) (string, bool) {
	return s.get(ctx, s.accessKey)
}

func (s *CredentialStore) RefreshToken(ctx context.Context) (string, bool) {
	return s.get(ctx, s.refreshKey)
}

// SetTokens writes both keys in one MULTI/EXEC.
func (s *CredentialStore) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.MSet(ctx, s.accessKey, accessToken, s.refreshKey, refreshToken)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set tokens: %w", err)
	}
	return nil
}

func (s *CredentialStore) ClearTokens(ctx context.Context) error {
	if err := s.client.Del(ctx, s.accessKey, s.refreshKey).Err(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

func (s *CredentialStore) get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		s.log.Warnw("failed to read token from redis", "key", key, "error", err)
		return "", false
	}
	return val, val != ""
}
