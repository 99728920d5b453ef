package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRefreshTokenExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.StoreRefreshToken(ctx, "u-1", "jti-1", time.Minute))
	exists, err := store.RefreshTokenExists(ctx, "u-1", "jti-1")
	require.NoError(t, err)
	assert.True(t, exists)

	now = now.Add(2 * time.Minute)
	exists, err = store.RefreshTokenExists(ctx, "u-1", "jti-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStoreRevokeAll(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.StoreRefreshToken(ctx, "u-1", "a", time.Minute))
	require.NoError(t, store.StoreRefreshToken(ctx, "u-1", "b", time.Minute))
	require.NoError(t, store.StoreRefreshToken(ctx, "u-2", "c", time.Minute))

	require.NoError(t, store.RevokeAllRefreshTokens(ctx, "u-1"))

	for _, tc := range []struct {
		user, jti string
		want      bool
	}{{"u-1", "a", false}, {"u-1", "b", false}, {"u-2", "c", true}} {
		exists, err := store.RefreshTokenExists(ctx, tc.user, tc.jti)
		require.NoError(t, err)
		assert.Equal(t, tc.want, exists, "%s/%s", tc.user, tc.jti)
	}
}

func TestMemoryStoreCodeLifecycle(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.SetCode(ctx, SceneLogin, "138", CodeRecord{Code: "123456"}, time.Minute))

	record, err := store.GetCode(ctx, SceneLogin, "138")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "123456", record.Code)

	// Update keeps the record under the original deadline.
	record.Attempts = 2
	require.NoError(t, store.UpdateCode(ctx, SceneLogin, "138", *record))
	record, err = store.GetCode(ctx, SceneLogin, "138")
	require.NoError(t, err)
	assert.Equal(t, 2, record.Attempts)

	now = now.Add(2 * time.Minute)
	record, err = store.GetCode(ctx, SceneLogin, "138")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestMemoryStoreDailyCountRollsOver(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := store.IncrDailyCount(ctx, SceneLogin, "138")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	// Next day starts a fresh counter.
	now = now.Add(2 * time.Hour)
	n, err := store.IncrDailyCount(ctx, SceneLogin, "138")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
