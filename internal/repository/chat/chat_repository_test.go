// File: internal/repository/chat/chat_repository_test.go
package chat

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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Chat{}, &domain.Message{}))
	return db
}

func TestCreateDefaultsTitle(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))

	created, err := repo.Create(context.Background(), &domain.Chat{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChatTitle, created.Title)
	assert.NotZero(t, created.ID)
}

func TestFindByIDForUserScopesOwnership(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Chat{UserID: 1, Title: "mine"})
	require.NoError(t, err)

	found, err := repo.FindByIDForUser(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "mine", found.Title)

	// Another user's lookup must look exactly like a missing chat.
	_, err = repo.FindByIDForUser(ctx, created.ID, 2)
	assert.ErrorIs(t, err, ErrChatNotFound)

	_, err = repo.FindByIDForUser(ctx, created.ID+100, 1)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestUpdateTitleScopesOwnership(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Chat{UserID: 1})
	require.NoError(t, err)

	updated, err := repo.UpdateTitle(ctx, created.ID, 1, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	_, err = repo.UpdateTitle(ctx, created.ID, 2, "stolen")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestDeleteCascadesMessages(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	chat1, err := repo.Create(ctx, &domain.Chat{UserID: 1})
	require.NoError(t, err)
	chat2, err := repo.Create(ctx, &domain.Chat{UserID: 1})
	require.NoError(t, err)

	require.NoError(t, db.Create(&domain.Message{ChatID: chat1.ID, Sender: domain.SenderUser, Content: "hi"}).Error)
	require.NoError(t, db.Create(&domain.Message{ChatID: chat1.ID, Sender: domain.SenderAssistant, Content: "hello"}).Error)
	require.NoError(t, db.Create(&domain.Message{ChatID: chat2.ID, Sender: domain.SenderUser, Content: "other"}).Error)

	require.NoError(t, repo.Delete(ctx, chat1.ID, 1))

	var orphans int64
	require.NoError(t, db.Model(&domain.Message{}).Where("chat_id = ?", chat1.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	// Messages in other chats are untouched.
	var remaining int64
	require.NoError(t, db.Model(&domain.Message{}).Where("chat_id = ?", chat2.ID).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}

func TestDeleteScopesOwnership(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Chat{UserID: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, created.ID, 2), ErrChatNotFound)

	// Still present for the real owner.
	_, err = repo.FindByIDForUser(ctx, created.ID, 1)
	assert.NoError(t, err)
}

func TestFindByUserIDOrdersByActivity(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Chat{UserID: 1, Title: "first"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, &domain.Chat{UserID: 1, Title: "second"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Chat{UserID: 2, Title: "foreign"})
	require.NoError(t, err)

	// Backdate the second chat so the first is the most recently active.
	stale := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&domain.Chat{}).Where("id = ?", second.ID).Update("updated_at", stale).Error)

	chats, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "first", chats[0].Title)
	assert.Equal(t, "second", chats[1].Title)
}

func TestTouchUpdatedAt(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Chat{UserID: 1})
	require.NoError(t, err)

	assert.NoError(t, repo.TouchUpdatedAt(ctx, created.ID))
	assert.ErrorIs(t, repo.TouchUpdatedAt(ctx, created.ID+100), ErrChatNotFound)
}

func TestTitleValidation(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Chat{UserID: 1})
	require.NoError(t, err)

	_, err = repo.UpdateTitle(ctx, created.ID, 1, "<script>alert(1)</script>")
	assert.Error(t, err)

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	_, err = repo.UpdateTitle(ctx, created.ID, 1, string(long))
	assert.Error(t, err)
}
