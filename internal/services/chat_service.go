// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"llm-chat-backend/internal/domain"
	"llm-chat-backend/internal/repository/chat"
	"llm-chat-backend/internal/repository/message"
	"llm-chat-backend/internal/repository/user"
	"llm-chat-backend/internal/services/ai"
	chatservice "llm-chat-backend/internal/services/chat"
)

// ChatService is the conversation orchestrator: it resolves ownership,
// assembles history, calls the completion provider and records both sides
// of each exchange. Ownership is always resolved before the provider is
// contacted, so a bad chat ID never costs an external call.
type ChatService struct {
	userRepo    user.UserRepository
	chatRepo    chat.ChatRepository
	messageRepo message.MessageRepository
	provider    ai.CompletionProvider
	logger      Logger
}

// UserStats summarizes a user's account activity.
type UserStats struct {
	TotalChats    int64      `json:"total_chats"`
	TotalMessages int64      `json:"total_messages"`
	LastActivity  *time.Time `json:"last_activity"`
	User          string     `json:"user"`
}

// ContinueResult is the outcome of a context-aware turn: the reply plus the
// chat's full message list including the two messages just added.
type ContinueResult struct {
	Reply    string           `json:"reply"`
	ChatID   uint             `json:"chat_id"`
	Messages []domain.Message `json:"messages"`
}

func NewChatService(
	userRepo user.UserRepository,
	chatRepo chat.ChatRepository,
	messageRepo message.MessageRepository,
	provider ai.CompletionProvider,
	logger Logger,
) (*ChatService, error) {
	if userRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "user repository is required")
	}
	if chatRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "chat repository is required")
	}
	if messageRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "message repository is required")
	}
	if provider == nil {
		return nil, chatservice.NewValidationError("constructor", "completion provider is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ChatService{
		userRepo:    userRepo,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		provider:    provider,
		logger:      logger,
	}, nil
}

// resolveUser maps the token subject to a user row. A missing user is a
// NotFound, same as any other broken ownership chain.
func (s *ChatService) resolveUser(ctx context.Context, email string) (*domain.User, error) {
	userRecord, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, chatservice.NewNotFoundError("resolve_user", "user not found")
	}
	return userRecord, nil
}

// resolveChat resolves user then chat; both checks fail with NotFound so a
// foreign-owned chat looks exactly like a missing one.
func (s *ChatService) resolveChat(ctx context.Context, email string, chatID uint) (*domain.User, *domain.Chat, error) {
	userRecord, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	chatRecord, err := s.chatRepo.FindByIDForUser(ctx, chatID, userRecord.ID)
	if err != nil {
		return nil, nil, chatservice.NewNotFoundError("resolve_chat", "chat not found")
	}

	return userRecord, chatRecord, nil
}

// ===== CHAT CRUD =====

func (s *ChatService) CreateChat(ctx context.Context, email string) (*domain.Chat, error) {
	userRecord, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	newChat := &domain.Chat{UserID: userRecord.ID, Title: domain.DefaultChatTitle}
	createdChat, err := s.chatRepo.Create(ctx, newChat)
	if err != nil {
		return nil, chatservice.NewInternalError("create_chat", "could not create chat", err)
	}
	return createdChat, nil
}

func (s *ChatService) GetUserChats(ctx context.Context, email string) ([]domain.Chat, error) {
	userRecord, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	chats, err := s.chatRepo.FindByUserID(ctx, userRecord.ID)
	if err != nil {
		return nil, chatservice.NewInternalError("get_chats", "could not fetch chats", err)
	}
	return chats, nil
}

func (s *ChatService) GetChat(ctx context.Context, email string, chatID uint) (*domain.Chat, error) {
	_, chatRecord, err := s.resolveChat(ctx, email, chatID)
	if err != nil {
		return nil, err
	}
	return chatRecord, nil
}

func (s *ChatService) GetChatMessages(ctx context.Context, email string, chatID uint) ([]domain.Message, error) {
	_, chatRecord, err := s.resolveChat(ctx, email, chatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.FindByChatID(ctx, chatRecord.ID)
	if err != nil {
		return nil, chatservice.NewInternalError("get_messages", "could not fetch messages", err)
	}
	return messages, nil
}

func (s *ChatService) RenameChat(ctx context.Context, email string, chatID uint, title string) (*domain.Chat, error) {
	if strings.TrimSpace(title) == "" {
		return nil, chatservice.NewValidationError("rename_chat", "chat title cannot be empty")
	}
	// Truncate on rune boundaries so multibyte titles never get cut into
	// invalid UTF-8.
	if runes := []rune(title); len(runes) > 100 {
		title = string(runes[:100])
	}

	userRecord, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	chatRecord, err := s.chatRepo.UpdateTitle(ctx, chatID, userRecord.ID, title)
	if err != nil {
		if errors.Is(err, chat.ErrChatNotFound) {
			return nil, chatservice.NewNotFoundError("rename_chat", "chat not found")
		}
		return nil, chatservice.NewInternalError("rename_chat", "could not rename chat", err)
	}
	return chatRecord, nil
}

func (s *ChatService) DeleteChat(ctx context.Context, email string, chatID uint) error {
	userRecord, err := s.resolveUser(ctx, email)
	if err != nil {
		return err
	}

	if err := s.chatRepo.Delete(ctx, chatID, userRecord.ID); err != nil {
		if errors.Is(err, chat.ErrChatNotFound) {
			return chatservice.NewNotFoundError("delete_chat", "chat not found")
		}
		return chatservice.NewInternalError("delete_chat", "could not delete chat", err)
	}
	return nil
}

// ===== CONVERSATION TURNS =====

// Send handles a single turn with no history replay. The user message is
// committed before the completion call so it survives a provider failure;
// it stays pending_reply until the assistant reply is committed.
func (s *ChatService) Send(ctx context.Context, email string, chatID uint, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", chatservice.NewValidationError("send", "message cannot be empty")
	}

	_, chatRecord, err := s.resolveChat(ctx, email, chatID)
	if err != nil {
		return "", err
	}

	userMessage, err := s.messageRepo.Create(ctx, &domain.Message{
		ChatID:  chatRecord.ID,
		Sender:  domain.SenderUser,
		Content: text,
		Status:  domain.StatusPendingReply,
	})
	if err != nil {
		return "", chatservice.NewInternalError("send", "could not save user message", err)
	}
	if err := s.chatRepo.TouchUpdatedAt(ctx, chatRecord.ID); err != nil {
		s.logger.Warn("failed to bump chat timestamp", "chat_id", chatRecord.ID, "error", err)
	}

	reply, err := s.provider.Complete(ctx, []ai.Turn{{Role: ai.RoleUser, Content: text}})
	if err != nil {
		// The user message stays persisted as pending_reply; callers see
		// a turn without an assistant reply, not corruption.
		s.logger.Error("completion failed", "chat_id", chatRecord.ID, "error", err)
		return "", chatservice.NewUpstreamError("send", "completion provider failed", err)
	}

	if _, err := s.messageRepo.Create(ctx, &domain.Message{
		ChatID:  chatRecord.ID,
		Sender:  domain.SenderAssistant,
		Content: reply,
	}); err != nil {
		return "", chatservice.NewInternalError("send", "could not save assistant message", err)
	}
	if err := s.messageRepo.MarkComplete(ctx, userMessage.ID); err != nil {
		s.logger.Warn("failed to mark user message complete", "message_id", userMessage.ID, "error", err)
	}
	if err := s.chatRepo.TouchUpdatedAt(ctx, chatRecord.ID); err != nil {
		s.logger.Warn("failed to bump chat timestamp", "chat_id", chatRecord.ID, "error", err)
	}

	return reply, nil
}

// Continue handles a context-aware turn: the chat's whole history is
// replayed to the provider ahead of the new message. Stored user messages
// become user turns; everything else is re-injected as a system turn,
// assistant replies included.
func (s *ChatService) Continue(ctx context.Context, email string, chatID uint, text string) (*ContinueResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, chatservice.NewValidationError("continue", "message cannot be empty")
	}

	_, chatRecord, err := s.resolveChat(ctx, email, chatID)
	if err != nil {
		return nil, err
	}

	history, err := s.messageRepo.FindByChatID(ctx, chatRecord.ID)
	if err != nil {
		return nil, chatservice.NewInternalError("continue", "could not load history", err)
	}

	turns := make([]ai.Turn, 0, len(history)+1)
	for _, msg := range history {
		role := ai.RoleSystem
		if msg.Sender == domain.SenderUser {
			role = ai.RoleUser
		}
		turns = append(turns, ai.Turn{Role: role, Content: msg.Content})
	}
	turns = append(turns, ai.Turn{Role: ai.RoleUser, Content: text})

	reply, err := s.provider.Complete(ctx, turns)
	if err != nil {
		s.logger.Error("completion failed", "chat_id", chatRecord.ID, "history_len", len(history), "error", err)
		return nil, chatservice.NewUpstreamError("continue", "completion provider failed", err)
	}

	userMessage, err := s.messageRepo.Create(ctx, &domain.Message{
		ChatID:  chatRecord.ID,
		Sender:  domain.SenderUser,
		Content: text,
	})
	if err != nil {
		return nil, chatservice.NewInternalError("continue", "could not save user message", err)
	}

	assistantMessage, err := s.messageRepo.Create(ctx, &domain.Message{
		ChatID:  chatRecord.ID,
		Sender:  domain.SenderAssistant,
		Content: reply,
	})
	if err != nil {
		return nil, chatservice.NewInternalError("continue", "could not save assistant message", err)
	}

	if err := s.chatRepo.TouchUpdatedAt(ctx, chatRecord.ID); err != nil {
		s.logger.Warn("failed to bump chat timestamp", "chat_id", chatRecord.ID, "error", err)
	}

	return &ContinueResult{
		Reply:    reply,
		ChatID:   chatRecord.ID,
		Messages: append(append([]domain.Message{}, history...), *userMessage, *assistantMessage),
	}, nil
}

// Regenerate replaces the latest assistant reply. Only the most recent
// user message is replayed to the provider, and at most one assistant
// message is deleted.
func (s *ChatService) Regenerate(ctx context.Context, email string, chatID uint) (*domain.Message, error) {
	_, chatRecord, err := s.resolveChat(ctx, email, chatID)
	if err != nil {
		return nil, err
	}

	lastUserMsg, err := s.messageRepo.FindLatestBySender(ctx, chatRecord.ID, domain.SenderUser)
	if err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			return nil, chatservice.NewNotFoundError("regenerate", "no user message found to regenerate")
		}
		return nil, chatservice.NewInternalError("regenerate", "could not load last user message", err)
	}

	lastAssistantMsg, err := s.messageRepo.FindLatestBySender(ctx, chatRecord.ID, domain.SenderAssistant)
	if err == nil {
		if err := s.messageRepo.Delete(ctx, lastAssistantMsg.ID); err != nil {
			return nil, chatservice.NewInternalError("regenerate", "could not delete previous reply", err)
		}
	} else if !errors.Is(err, message.ErrMessageNotFound) {
		return nil, chatservice.NewInternalError("regenerate", "could not load last assistant message", err)
	}

	reply, err := s.provider.Complete(ctx, []ai.Turn{{Role: ai.RoleUser, Content: lastUserMsg.Content}})
	if err != nil {
		s.logger.Error("completion failed", "chat_id", chatRecord.ID, "error", err)
		return nil, chatservice.NewUpstreamError("regenerate", "completion provider failed", err)
	}

	newReply, err := s.messageRepo.Create(ctx, &domain.Message{
		ChatID:  chatRecord.ID,
		Sender:  domain.SenderAssistant,
		Content: reply,
	})
	if err != nil {
		return nil, chatservice.NewInternalError("regenerate", "could not save regenerated reply", err)
	}

	return newReply, nil
}

// ===== MESSAGE OPERATIONS =====

// EditMessage overwrites a message's content in place. Sender and chat
// binding are untouched and no new reply is generated.
func (s *ChatService) EditMessage(ctx context.Context, email string, chatID, messageID uint, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, chatservice.NewValidationError("edit_message", "message content cannot be empty")
	}

	_, chatRecord, err := s.resolveChat(ctx, email, chatID)
	if err != nil {
		return nil, err
	}

	existing, err := s.messageRepo.FindByIDInChat(ctx, messageID, chatRecord.ID)
	if err != nil {
		return nil, chatservice.NewNotFoundError("edit_message", "message not found")
	}

	updated, err := s.messageRepo.UpdateContent(ctx, existing.ID, content)
	if err != nil {
		return nil, chatservice.NewInternalError("edit_message", "could not update message", err)
	}
	return updated, nil
}

// DeleteMessage removes a single message. Ownership is checked through the
// owning chat since messages carry no user ID of their own.
func (s *ChatService) DeleteMessage(ctx context.Context, email string, messageID uint) error {
	userRecord, err := s.resolveUser(ctx, email)
	if err != nil {
		return err
	}

	msg, err := s.messageRepo.FindByIDForUser(ctx, messageID, userRecord.ID)
	if err != nil {
		return chatservice.NewNotFoundError("delete_message", "message not found")
	}

	if err := s.messageRepo.Delete(ctx, msg.ID); err != nil {
		return chatservice.NewInternalError("delete_message", "could not delete message", err)
	}
	return nil
}

// ===== ACCOUNT STATS =====

func (s *ChatService) Stats(ctx context.Context, email string) (*UserStats, error) {
	userRecord, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	chatCount, err := s.chatRepo.CountByUserID(ctx, userRecord.ID)
	if err != nil {
		return nil, chatservice.NewInternalError("stats", "could not count chats", err)
	}

	messageCount, err := s.messageRepo.CountForUser(ctx, userRecord.ID)
	if err != nil {
		return nil, chatservice.NewInternalError("stats", "could not count messages", err)
	}

	lastActivity, err := s.messageRepo.LastActivityForUser(ctx, userRecord.ID)
	if err != nil {
		return nil, chatservice.NewInternalError("stats", "could not find last activity", err)
	}

	return &UserStats{
		TotalChats:    chatCount,
		TotalMessages: messageCount,
		LastActivity:  lastActivity,
		User:          userRecord.Email,
	}, nil
}
