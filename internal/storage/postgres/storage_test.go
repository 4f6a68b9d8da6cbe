package postgres

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/storage"
)

func nextSession() models.RefreshSession {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.RefreshSession{
		UserID:         1,
		Selector:       "s2",
		VerifierHash:   "h2",
		UserAgent:      "foodsafer-cli",
		IPAddress:      "127.0.0.1",
		AccessTokenJTI: "jti-2",
		CreatedAt:      now,
		ExpiresAt:      now.Add(24 * time.Hour),
	}
}

func TestStorage_RotateSession(t *testing.T) {
	db, mock := newMock(t)
	s := NewStorage(db)
	next := nextSession()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET status = 'used'`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WithArgs(next.UserID, next.Selector, next.VerifierHash, next.IPAddress, next.UserAgent, next.ExpiresAt, next.CreatedAt, next.AccessTokenJTI).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	rotated, err := s.RotateSession(t.Context(), "s1", next)
	require.NoError(t, err)
	assert.True(t, rotated)
}

func TestStorage_RotateSessionAlreadyUsed(t *testing.T) {
	db, mock := newMock(t)
	s := NewStorage(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET status = 'used'`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rotated, err := s.RotateSession(t.Context(), "s1", nextSession())
	require.NoError(t, err)
	assert.False(t, rotated)
}

func TestStorage_RotateSessionInsertFails(t *testing.T) {
	db, mock := newMock(t)
	s := NewStorage(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET status = 'used'`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	rotated, err := s.RotateSession(t.Context(), "s1", nextSession())
	require.Error(t, err)
	assert.False(t, rotated)
}

func TestSessionRepository_GetActiveSessionBySelector(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepository(db)
	want := nextSession()

	columns := []string{"id", "user_id", "selector", "verifier_hash", "client_ip", "user_agent", "expires_at", "created_at", "access_token_jti"}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions WHERE selector = $1 AND status = 'active'`)).
		WithArgs("s2").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			2, want.UserID, want.Selector, want.VerifierHash, want.IPAddress, want.UserAgent, want.ExpiresAt, want.CreatedAt, want.AccessTokenJTI,
		))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions WHERE selector = $1`)).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetActiveSessionBySelector(t.Context(), "s2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.ID)
	assert.Equal(t, want.VerifierHash, got.VerifierHash)
	assert.Equal(t, want.AccessTokenJTI, got.AccessTokenJTI)

	_, err = repo.GetActiveSessionBySelector(t.Context(), "gone")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, password_hash FROM users WHERE lower(email) = lower($1)`)).
		WithArgs("Inspector@FoodSafer.dev").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash"}).AddRow(1, "inspector@foodsafer.dev", "h"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE lower(email)`)).
		WithArgs("nobody@foodsafer.dev").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetUserByEmail(t.Context(), "Inspector@FoodSafer.dev")
	require.NoError(t, err)
	assert.EqualValues(t, 1, u.ID)

	_, err = repo.GetUserByEmail(t.Context(), "nobody@foodsafer.dev")
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}
