package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/storage"
)

// CredentialStore keeps one row per profile, so both tokens change in a single statement.
type CredentialStore struct {
	db      storage.DBTX
	profile string
	log     *zap.SugaredLogger
}

func NewCredentialStore(db storage.DBTX, profile string, log *zap.SugaredLogger) *CredentialStore {
	return &CredentialStore{db: db, profile: profile, log: log}
}

func (s *CredentialStore) AccessToken(ctx context.Context) (string, bool) {
	return s.get(ctx, `SELECT access_token FROM credentials WHERE profile = $1`)
}

func (s *CredentialStore) RefreshToken(ctx context.Context) (string, bool) {
	return s.get(ctx, `SELECT refresh_token FROM credentials WHERE profile = $1`)
}

func (s *CredentialStore) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	query := `INSERT INTO credentials (profile, access_token, refresh_token, updated_at) VALUES ($1, $2, $3, now())
ON CONFLICT (profile) DO UPDATE SET access_token = EXCLUDED.access_token, refresh_token = EXCLUDED.refresh_token, updated_at = now()`
	if _, err := s.db.ExecContext(ctx, query, s.profile, accessToken, refreshToken); err != nil {
		return fmt.Errorf("set tokens: %w", err)
	}
	return nil
}

func (s *CredentialStore) ClearTokens(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE profile = $1`, s.profile); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

func (s *CredentialStore) get(ctx context.Context, query string) (string, bool) {
	var token string
	err := s.db.QueryRowContext(ctx, query, s.profile).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.log.Warnw("failed to read token from postgres", "profile", s.profile, "error", err)
		return "", false
	}
	return token, token != ""
}
