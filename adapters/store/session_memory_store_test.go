package store

import (
	"context"
	"errors"
	"testing"

	"github.com/layer-3/portal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	_, ok := s.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, core.CredentialPair{Access: "a", Refresh: "r"}))
	pair, ok := s.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, core.CredentialPair{Access: "a", Refresh: "r"}, pair)
	assert.Equal(t, []string{core.RefreshTokenKey, core.AccessTokenKey}, s.Writes())

	require.NoError(t, s.Clear(ctx))
	pair, ok = s.Get(ctx)
	assert.False(t, ok)
	assert.True(t, pair.Empty())
}

func TestMemorySessionStore_PartialSeed(t *testing.T) {
	s := NewMemorySessionStoreWith(core.CredentialPair{Refresh: "r"})

	pair, ok := s.Get(context.Background())
	assert.False(t, ok)
	assert.Equal(t, core.SessionPartial, pair.State())
}

func TestMemorySessionStore_SetErrLeavesRefreshOnly(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStoreWith(core.CredentialPair{Access: "old-a", Refresh: "old-r"})
	s.SetErr = errors.New("disk full")

	err := s.Set(ctx, core.CredentialPair{Access: "new-a", Refresh: "new-r"})
	assert.EqualError(t, err, "disk full")

	pair, _ := s.Get(ctx)
	assert.Equal(t, "new-r", pair.Refresh)
	assert.Equal(t, "old-a", pair.Access)
}
