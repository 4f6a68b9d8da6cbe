package memory

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/storage"
)

func newSession(userID int64, selector string, ttl time.Duration) models.RefreshSession {
	now := time.Now()
	return models.RefreshSession{
		UserID:       userID,
		Selector:     selector,
		VerifierHash: "hash-" + selector,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

func TestSessionRepository_Rotate(t *testing.T) {
	ctx := t.Context()
	repo := NewSessionRepository(zap.NewNop().Sugar())

	require.NoError(t, repo.CreateSession(ctx, newSession(1, "s1", time.Hour)))

	got, err := repo.GetActiveSessionBySelector(ctx, "s1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ID)
	assert.EqualValues(t, 1, got.UserID)

	rotated, err := repo.RotateSession(ctx, "s1", newSession(1, "s2", time.Hour))
	require.NoError(t, err)
	assert.True(t, rotated)

	_, err = repo.GetActiveSessionBySelector(ctx, "s1")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	next, err := repo.GetActiveSessionBySelector(ctx, "s2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, next.ID)

	rotated, err = repo.RotateSession(ctx, "s1", newSession(1, "s3", time.Hour))
	require.NoError(t, err)
	assert.False(t, rotated)

	_, err = repo.GetActiveSessionBySelector(ctx, "s3")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionRepository_ConcurrentRotationHasOneWinner(t *testing.T) {
	ctx := t.Context()
	repo := NewSessionRepository(zap.NewNop().Sugar())
	require.NoError(t, repo.CreateSession(ctx, newSession(1, "s1", time.Hour)))

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := newSession(1, "next-"+string(rune('a'+i)), time.Hour)
			if ok, err := repo.RotateSession(ctx, "s1", next); err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, winners.Load())
}

func TestSessionRepository_Expired(t *testing.T) {
	ctx := t.Context()
	repo := NewSessionRepository(zap.NewNop().Sugar())
	require.NoError(t, repo.CreateSession(ctx, newSession(1, "old", -time.Minute)))

	_, err := repo.GetActiveSessionBySelector(ctx, "old")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionRepository_DeleteAllUserSessions(t *testing.T) {
	ctx := t.Context()
	repo := NewSessionRepository(zap.NewNop().Sugar())
	require.NoError(t, repo.CreateSession(ctx, newSession(1, "a", time.Hour)))
	require.NoError(t, repo.CreateSession(ctx, newSession(1, "b", time.Hour)))
	require.NoError(t, repo.CreateSession(ctx, newSession(2, "c", time.Hour)))

	require.NoError(t, repo.DeleteAllUserSessions(ctx, 1))

	_, err := repo.GetActiveSessionBySelector(ctx, "a")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
	_, err = repo.GetActiveSessionBySelector(ctx, "b")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
	_, err = repo.GetActiveSessionBySelector(ctx, "c")
	require.NoError(t, err)
}
