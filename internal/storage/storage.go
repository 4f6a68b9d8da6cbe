package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rryowa/foodsafer/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")
)

// CredentialStore is the single source of truth for the client's token pair.
// Getters never fail: an unreadable backend reads as "no token".
// SetTokens and ClearTokens always touch both tokens together.
type CredentialStore interface {
	AccessToken(ctx context.Context) (string, bool)
	RefreshToken(ctx context.Context) (string, bool)
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
	ClearTokens(ctx context.Context) error
}

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session models.RefreshSession) error
	GetActiveSessionBySelector(ctx context.Context, selector string) (*models.RefreshSession, error)
	// RotateSession marks the old session used and stores its successor in one
	// step. It reports false when the old session was already used, so two
	// concurrent rotations of one refresh token produce a single winner.
	RotateSession(ctx context.Context, oldSelector string, next models.RefreshSession) (bool, error)
	DeleteAllUserSessions(ctx context.Context, userID int64) error
}

// TokenStorage keeps revoked access tokens until they would expire anyway.
type TokenStorage interface {
	InvalidateToken(ctx context.Context, token string, expiration time.Duration) error
	IsTokenInvalidated(ctx context.Context, token string) (bool, error)
}

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
