// File: internal/repository/token/gorm_token_store_test.go
package token

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"llm-chat-backend/internal/domain"
)

func newStoreDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.RefreshToken{}))
	return db
}

func TestGormTokenStoreLifecycle(t *testing.T) {
	store := NewGormTokenStore(newStoreDB(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "raw-token", "alice@example.com", time.Now().Add(time.Hour)))

	live, err := store.Exists(ctx, "raw-token")
	require.NoError(t, err)
	assert.True(t, live)

	live, err = store.Exists(ctx, "other-token")
	require.NoError(t, err)
	assert.False(t, live)

	require.NoError(t, store.Delete(ctx, "raw-token"))

	live, err = store.Exists(ctx, "raw-token")
	require.NoError(t, err)
	assert.False(t, live)

	// Deleting an absent token is a no-op.
	assert.NoError(t, store.Delete(ctx, "raw-token"))
}

func TestGormTokenStoreExpiry(t *testing.T) {
	store := NewGormTokenStore(newStoreDB(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "expired", "alice@example.com", time.Now().Add(-time.Minute)))
	require.NoError(t, store.Save(ctx, "live", "alice@example.com", time.Now().Add(time.Hour)))

	live, err := store.Exists(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, live)

	removed, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	live, err = store.Exists(ctx, "live")
	require.NoError(t, err)
	assert.True(t, live)
}

func TestGormTokenStoreHashesRawTokens(t *testing.T) {
	db := newStoreDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "raw-token", "alice@example.com", time.Now().Add(time.Hour)))

	var record domain.RefreshToken
	require.NoError(t, db.First(&record).Error)
	assert.NotEqual(t, "raw-token", record.TokenHash)
	assert.Equal(t, hashToken("raw-token"), record.TokenHash)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "raw-token", "alice@example.com", time.Now().Add(time.Hour)))
	require.NoError(t, store.Save(ctx, "expired", "alice@example.com", time.Now().Add(-time.Minute)))

	live, err := store.Exists(ctx, "raw-token")
	require.NoError(t, err)
	assert.True(t, live)

	live, err = store.Exists(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, live)

	removed, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	require.NoError(t, store.Delete(ctx, "raw-token"))
	live, err = store.Exists(ctx, "raw-token")
	require.NoError(t, err)
	assert.False(t, live)
}
