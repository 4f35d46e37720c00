package message

import (
	"context"
	"time"

	"llm-chat-backend/internal/domain"
)

// MessageRepository handles message data operations. Messages carry no
// user_id column, so per-user scoping always goes through the owning chat.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error)
	FindByIDForUser(ctx context.Context, messageID, userID uint) (*domain.Message, error)
	FindByIDInChat(ctx context.Context, messageID, chatID uint) (*domain.Message, error)
	FindLatestBySender(ctx context.Context, chatID uint, sender string) (*domain.Message, error)
	UpdateContent(ctx context.Context, messageID uint, content string) (*domain.Message, error)
	MarkComplete(ctx context.Context, messageID uint) error
	Delete(ctx context.Context, messageID uint) error
	DeleteByChatID(ctx context.Context, chatID uint) error
	CountForUser(ctx context.Context, userID uint) (int64, error)
	LastActivityForUser(ctx context.Context, userID uint) (*time.Time, error)
}
