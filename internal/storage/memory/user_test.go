package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/storage"
)

func TestUserRepository(t *testing.T) {
	ctx := t.Context()
	repo := NewUserRepository(models.User{ID: 7, Email: "Inspector@FoodSafer.dev", PasswordHash: "h"})

	u, err := repo.GetUserByEmail(ctx, "inspector@foodsafer.dev")
	require.NoError(t, err)
	assert.EqualValues(t, 7, u.ID)

	u, err = repo.GetUserByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "h", u.PasswordHash)

	_, err = repo.GetUserByEmail(ctx, "nobody@foodsafer.dev")
	require.ErrorIs(t, err, storage.ErrUserNotFound)
	_, err = repo.GetUserByID(ctx, 8)
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}
