package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/storage"
)

const sessionColumns = `id, user_id, selector, verifier_hash, client_ip, user_agent, expires_at, created_at, access_token_jti`

// SessionRepository stores one row per issued refresh token. A row is
// 'active' until its token is rotated, then 'used'.
type SessionRepository struct {
	db storage.DBTX
}

func NewSessionRepository(db storage.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, s models.RefreshSession) error {
	query := `INSERT INTO sessions (user_id, selector, verifier_hash, client_ip, user_agent, expires_at, created_at, access_token_jti) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		s.UserID, s.Selector, s.VerifierHash, s.IPAddress, s.UserAgent, s.ExpiresAt, s.CreatedAt, s.AccessTokenJTI,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetActiveSessionBySelector(ctx context.Context, selector string) (*models.RefreshSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE selector = $1 AND status = 'active' AND expires_at > now()`

	var s models.RefreshSession
	err := r.db.QueryRowContext(ctx, query, selector).Scan(
		&s.ID, &s.UserID, &s.Selector, &s.VerifierHash, &s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt, &s.AccessTokenJTI,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("selector %s: %w", selector, storage.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// MarkSessionAsUsed reports false when the session was not active anymore.
func (r *SessionRepository) MarkSessionAsUsed(ctx context.Context, selector string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET status = 'used' WHERE selector = $1 AND status = 'active'`, selector)
	if err != nil {
		return false, fmt.Errorf("mark session used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *SessionRepository) DeleteAllUserSessions(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}
