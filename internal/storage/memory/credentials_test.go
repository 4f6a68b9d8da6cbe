package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStore(t *testing.T) {
	ctx := t.Context()
	s := NewCredentialStore()

	_, ok := s.AccessToken(ctx)
	assert.False(t, ok)
	_, ok = s.RefreshToken(ctx)
	assert.False(t, ok)

	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))
	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))

	access, ok := s.AccessToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "a1", access)
	refresh, ok := s.RefreshToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "r1", refresh)

	require.NoError(t, s.ClearTokens(ctx))
	require.NoError(t, s.ClearTokens(ctx))

	_, ok = s.AccessToken(ctx)
	assert.False(t, ok)
	_, ok = s.RefreshToken(ctx)
	assert.False(t, ok)
}

func TestCredentialStore_EmptyRefreshReadsAsAbsent(t *testing.T) {
	s := NewCredentialStore()
	require.NoError(t, s.SetTokens(t.Context(), "a1", ""))

	_, ok := s.AccessToken(t.Context())
	assert.True(t, ok)
	_, ok = s.RefreshToken(t.Context())
	assert.False(t, ok)
}
