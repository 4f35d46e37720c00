// File: internal/services/chat_service_test.go
package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"llm-chat-backend/internal/domain"
	chatrepo "llm-chat-backend/internal/repository/chat"
	messagerepo "llm-chat-backend/internal/repository/message"
	userrepo "llm-chat-backend/internal/repository/user"
	"llm-chat-backend/internal/services/ai"
	chatservice "llm-chat-backend/internal/services/chat"
)

// fakeProvider records every completion request and replies with a canned
// answer or a canned failure.
type fakeProvider struct {
	reply string
	err   error
	calls [][]ai.Turn
}

func (f *fakeProvider) Complete(_ context.Context, turns []ai.Turn) (string, error) {
	f.calls = append(f.calls, turns)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) HealthCheck(context.Context) error { return nil }

type chatServiceFixture struct {
	svc         *ChatService
	provider    *fakeProvider
	messageRepo messagerepo.MessageRepository
	chatRepo    chatrepo.ChatRepository
	userRepo    userrepo.UserRepository
}

func newChatServiceFixture(t *testing.T) *chatServiceFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Chat{}, &domain.Message{}))

	provider := &fakeProvider{reply: "canned reply"}
	f := &chatServiceFixture{
		provider:    provider,
		userRepo:    userrepo.NewGormUserRepository(db),
		chatRepo:    chatrepo.NewChatRepository(db),
		messageRepo: messagerepo.NewMessageRepository(db),
	}

	f.svc, err = NewChatService(f.userRepo, f.chatRepo, f.messageRepo, provider, &NoOpLogger{})
	require.NoError(t, err)
	return f
}

func (f *chatServiceFixture) seedUser(t *testing.T, email string) *domain.User {
	t.Helper()

	u := &domain.User{Email: email}
	require.NoError(t, u.HashPassword("password123"))
	created, err := f.userRepo.Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

func (f *chatServiceFixture) seedChat(t *testing.T, userID uint) *domain.Chat {
	t.Helper()

	created, err := f.chatRepo.Create(context.Background(), &domain.Chat{UserID: userID})
	require.NoError(t, err)
	return created
}

func TestSendPersistsBothSides(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	reply, err := f.svc.Send(ctx, user.Email, chat.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "canned reply", reply)

	messages, err := f.messageRepo.FindByChatID(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, domain.SenderUser, messages[0].Sender)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, domain.StatusComplete, messages[0].Status)
	assert.Equal(t, domain.SenderAssistant, messages[1].Sender)
	assert.Equal(t, "canned reply", messages[1].Content)

	// Single-turn: the provider only ever sees the new message.
	require.Len(t, f.provider.calls, 1)
	require.Len(t, f.provider.calls[0], 1)
	assert.Equal(t, ai.RoleUser, f.provider.calls[0][0].Role)
	assert.Equal(t, "hello", f.provider.calls[0][0].Content)
}

func TestSendProviderFailureKeepsUserMessage(t *testing.T) {
	f := newChatServiceFixture(t)
	f.provider.err = errors.New("model unavailable")
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	_, err := f.svc.Send(ctx, user.Email, chat.ID, "hello")
	require.Error(t, err)
	assert.True(t, chatservice.IsUpstream(err))

	// The user message survives the failed call, still awaiting a reply.
	messages, findErr := f.messageRepo.FindByChatID(ctx, chat.ID)
	require.NoError(t, findErr)
	require.Len(t, messages, 1)
	assert.Equal(t, domain.SenderUser, messages[0].Sender)
	assert.Equal(t, domain.StatusPendingReply, messages[0].Status)
}

func TestSendRejectsForeignChatBeforeProviderCall(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")
	intruder := f.seedUser(t, "intruder@example.com")
	chat := f.seedChat(t, owner.ID)

	_, err := f.svc.Send(ctx, intruder.Email, chat.ID, "hello")
	require.Error(t, err)
	assert.True(t, chatservice.IsNotFound(err))
	assert.Empty(t, f.provider.calls)
}

func TestContinueReplaysHistory(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	seed := []struct{ sender, content string }{
		{domain.SenderUser, "first question"},
		{domain.SenderAssistant, "first answer"},
		{domain.SenderUser, "second question"},
	}
	for _, m := range seed {
		_, err := f.messageRepo.Create(ctx, &domain.Message{ChatID: chat.ID, Sender: m.sender, Content: m.content})
		require.NoError(t, err)
	}

	result, err := f.svc.Continue(ctx, user.Email, chat.ID, "third question")
	require.NoError(t, err)
	assert.Equal(t, "canned reply", result.Reply)
	assert.Equal(t, chat.ID, result.ChatID)

	// Full prior history plus the two new messages.
	require.Len(t, result.Messages, 5)
	assert.Equal(t, "third question", result.Messages[3].Content)
	assert.Equal(t, domain.SenderUser, result.Messages[3].Sender)
	assert.Equal(t, "canned reply", result.Messages[4].Content)
	assert.Equal(t, domain.SenderAssistant, result.Messages[4].Sender)

	// History goes to the provider ahead of the new turn. Prior assistant
	// replies ride along as system turns, not assistant turns.
	require.Len(t, f.provider.calls, 1)
	turns := f.provider.calls[0]
	require.Len(t, turns, 4)
	assert.Equal(t, ai.RoleUser, turns[0].Role)
	assert.Equal(t, ai.RoleSystem, turns[1].Role)
	assert.Equal(t, "first answer", turns[1].Content)
	assert.Equal(t, ai.RoleUser, turns[2].Role)
	assert.Equal(t, ai.RoleUser, turns[3].Role)
	assert.Equal(t, "third question", turns[3].Content)
}

func TestContinueProviderFailurePersistsNothing(t *testing.T) {
	f := newChatServiceFixture(t)
	f.provider.err = errors.New("model unavailable")
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	_, err := f.svc.Continue(ctx, user.Email, chat.ID, "question")
	require.Error(t, err)
	assert.True(t, chatservice.IsUpstream(err))

	messages, findErr := f.messageRepo.FindByChatID(ctx, chat.ID)
	require.NoError(t, findErr)
	assert.Empty(t, messages)
}

func TestRegenerateReplacesLatestReplyOnly(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	seed := []struct{ sender, content string }{
		{domain.SenderUser, "first question"},
		{domain.SenderAssistant, "first answer"},
		{domain.SenderUser, "second question"},
		{domain.SenderAssistant, "stale answer"},
	}
	for _, m := range seed {
		_, err := f.messageRepo.Create(ctx, &domain.Message{ChatID: chat.ID, Sender: m.sender, Content: m.content})
		require.NoError(t, err)
	}

	f.provider.reply = "fresh answer"
	newReply, err := f.svc.Regenerate(ctx, user.Email, chat.ID)
	require.NoError(t, err)
	assert.NotZero(t, newReply.ID)
	assert.Equal(t, "fresh answer", newReply.Content)
	assert.Equal(t, domain.SenderAssistant, newReply.Sender)

	// Only the latest user message is replayed; history stays home.
	require.Len(t, f.provider.calls, 1)
	require.Len(t, f.provider.calls[0], 1)
	assert.Equal(t, "second question", f.provider.calls[0][0].Content)

	// Exactly one assistant message deleted: the stale one. The first
	// answer is untouched.
	messages, findErr := f.messageRepo.FindByChatID(ctx, chat.ID)
	require.NoError(t, findErr)
	require.Len(t, messages, 4)
	contents := []string{}
	for _, m := range messages {
		contents = append(contents, m.Content)
	}
	assert.Contains(t, contents, "first answer")
	assert.NotContains(t, contents, "stale answer")
	assert.Contains(t, contents, "fresh answer")
}

func TestRegenerateWithoutUserMessage(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	_, err := f.svc.Regenerate(ctx, user.Email, chat.ID)
	require.Error(t, err)
	assert.True(t, chatservice.IsNotFound(err))
	assert.Empty(t, f.provider.calls)
}

func TestRegenerateWithoutPriorReply(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	_, err := f.messageRepo.Create(ctx, &domain.Message{ChatID: chat.ID, Sender: domain.SenderUser, Content: "unanswered"})
	require.NoError(t, err)

	newReply, err := f.svc.Regenerate(ctx, user.Email, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "canned reply", newReply.Content)

	messages, findErr := f.messageRepo.FindByChatID(ctx, chat.ID)
	require.NoError(t, findErr)
	assert.Len(t, messages, 2)
}

func TestRenameChatKeepsMultibyteTitlesIntact(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	// 100 runes but 101 bytes; must be stored whole, not cut mid-rune.
	title := strings.Repeat("a", 99) + "é"
	renamed, err := f.svc.RenameChat(ctx, user.Email, chat.ID, title)
	require.NoError(t, err)
	assert.Equal(t, title, renamed.Title)
	assert.True(t, utf8.ValidString(renamed.Title))
}

func TestRenameChatTruncatesOnRuneBoundary(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	renamed, err := f.svc.RenameChat(ctx, user.Email, chat.ID, strings.Repeat("é", 150))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 100), renamed.Title)
	assert.True(t, utf8.ValidString(renamed.Title))
	assert.Equal(t, 100, utf8.RuneCountInString(renamed.Title))
}

func TestEditMessageOverwritesInPlace(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)

	msg, err := f.messageRepo.Create(ctx, &domain.Message{ChatID: chat.ID, Sender: domain.SenderUser, Content: "typo"})
	require.NoError(t, err)

	updated, err := f.svc.EditMessage(ctx, user.Email, chat.ID, msg.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Content)
	assert.Equal(t, domain.SenderUser, updated.Sender)

	// No regeneration happens on edit.
	assert.Empty(t, f.provider.calls)
}

func TestDeleteMessageScopesOwnership(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "owner@example.com")
	intruder := f.seedUser(t, "intruder@example.com")
	chat := f.seedChat(t, owner.ID)

	msg, err := f.messageRepo.Create(ctx, &domain.Message{ChatID: chat.ID, Sender: domain.SenderUser, Content: "private"})
	require.NoError(t, err)

	err = f.svc.DeleteMessage(ctx, intruder.Email, msg.ID)
	require.Error(t, err)
	assert.True(t, chatservice.IsNotFound(err))

	require.NoError(t, f.svc.DeleteMessage(ctx, owner.Email, msg.ID))

	messages, findErr := f.messageRepo.FindByChatID(ctx, chat.ID)
	require.NoError(t, findErr)
	assert.Empty(t, messages)
}

func TestStats(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "alice@example.com")
	chat := f.seedChat(t, user.ID)
	f.seedChat(t, user.ID)

	_, err := f.svc.Send(ctx, user.Email, chat.ID, "hello")
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx, user.Email)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalChats)
	assert.EqualValues(t, 2, stats.TotalMessages)
	assert.Equal(t, user.Email, stats.User)
	require.NotNil(t, stats.LastActivity)
}

func TestChatCRUDForUnknownUser(t *testing.T) {
	f := newChatServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateChat(ctx, "ghost@example.com")
	require.Error(t, err)
	assert.True(t, chatservice.IsNotFound(err))
}
