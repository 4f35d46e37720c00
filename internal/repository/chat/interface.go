package chat

import (
	"context"

	"llm-chat-backend/internal/domain"
)

// ChatRepository handles chat data operations. Every lookup that acts on
// behalf of a user is scoped by the owning user's ID; a chat owned by
// someone else is indistinguishable from a missing one.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByIDForUser(ctx context.Context, chatID, userID uint) (*domain.Chat, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Chat, error)
	UpdateTitle(ctx context.Context, chatID, userID uint, title string) (*domain.Chat, error)
	Delete(ctx context.Context, chatID, userID uint) error
	TouchUpdatedAt(ctx context.Context, chatID uint) error
	CountByUserID(ctx context.Context, userID uint) (int64, error)
}
