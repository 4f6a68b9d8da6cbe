package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rryowa/foodsafer/internal/models"
)

// Storage backs the reference server's users and refresh sessions.
type Storage struct {
	db *sql.DB
	*UserRepository
	*SessionRepository
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		db:                db,
		UserRepository:    NewUserRepository(db),
		SessionRepository: NewSessionRepository(db),
	}
}

// RotateSession spends oldSelector and stores next in one transaction.
func (s *Storage) RotateSession(ctx context.Context, oldSelector string, next models.RefreshSession) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	sessions := NewSessionRepository(tx)

	spent, err := sessions.MarkSessionAsUsed(ctx, oldSelector)
	if err != nil {
		return false, err
	}
	if !spent {
		return false, nil
	}

	if err := sessions.CreateSession(ctx, next); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}
