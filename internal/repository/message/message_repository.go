// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"llm-chat-backend/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create - comprehensive input validation and secure logging.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if message.Status == "" {
		message.Status = domain.StatusComplete
	}

	err := r.db.WithContext(ctx).Create(message).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error during message creation for chat ID %d: %v", message.ChatID, err)
		return nil, errors.New("database error creating message")
	}

	log.Printf("[MessageRepository] Message created successfully with ID: %d for chat: %d", message.ID, message.ChatID)
	return message, nil
}

// FindByChatID returns the chat's messages in creation order, which is the
// order history is replayed to the completion provider.
func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc, id asc").
		Find(&messages).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for chat ID %d: %v", chatID, err)
		return nil, errors.New("database error fetching messages")
	}

	return messages, nil
}

// FindByIDForUser resolves a message only if its owning chat belongs to the
// given user. Foreign ownership is reported as ErrMessageNotFound.
func (r *gormMessageRepository) FindByIDForUser(ctx context.Context, messageID, userID uint) (*domain.Message, error) {
	if messageID == 0 || userID == 0 {
		return nil, errors.New("invalid message ID or user ID")
	}

	var message domain.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("messages.id = ? AND chats.user_id = ?", messageID, userID).
		First(&message).Error
	return r.handleFindError(err, &message, "FindByIDForUser")
}

func (r *gormMessageRepository) FindByIDInChat(ctx context.Context, messageID, chatID uint) (*domain.Message, error) {
	if messageID == 0 || chatID == 0 {
		return nil, errors.New("invalid message ID or chat ID")
	}

	var message domain.Message
	err := r.db.WithContext(ctx).
		Where("id = ? AND chat_id = ?", messageID, chatID).
		First(&message).Error
	return r.handleFindError(err, &message, "FindByIDInChat")
}

// FindLatestBySender returns the most recent message with the given sender.
func (r *gormMessageRepository) FindLatestBySender(ctx context.Context, chatID uint, sender string) (*domain.Message, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	var message domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND sender = ?", chatID, sender).
		Order("created_at DESC, id DESC").
		First(&message).Error
	return r.handleFindError(err, &message, "FindLatestBySender")
}

// UpdateContent overwrites a message's content in place. Sender and chat
// binding never change on edit.
func (r *gormMessageRepository) UpdateContent(ctx context.Context, messageID uint, content string) (*domain.Message, error) {
	if messageID == 0 {
		return nil, errors.New("invalid message ID")
	}
	if err := r.validateMessageContent(content); err != nil {
		return nil, fmt.Errorf("content validation: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", messageID).
		Update("content", content)

	if result.Error != nil {
		log.Printf("[MessageRepository] Database error updating message ID %d: %v", messageID, result.Error)
		return nil, errors.New("database error updating message")
	}
	if result.RowsAffected == 0 {
		return nil, ErrMessageNotFound
	}

	var message domain.Message
	if err := r.db.WithContext(ctx).First(&message, messageID).Error; err != nil {
		return nil, errors.New("database error reloading message")
	}

	log.Printf("[MessageRepository] Message updated successfully with ID: %d", messageID)
	return &message, nil
}

// MarkComplete transitions a pending_reply message to complete.
func (r *gormMessageRepository) MarkComplete(ctx context.Context, messageID uint) error {
	if messageID == 0 {
		return errors.New("invalid message ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", messageID).
		Update("status", domain.StatusComplete)

	if result.Error != nil {
		log.Printf("[MessageRepository] Database error marking message ID %d complete: %v", messageID, result.Error)
		return errors.New("database error updating message status")
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}

	return nil
}

func (r *gormMessageRepository) Delete(ctx context.Context, messageID uint) error {
	if messageID == 0 {
		return errors.New("invalid message ID")
	}

	result := r.db.WithContext(ctx).Delete(&domain.Message{}, messageID)
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error deleting message ID %d: %v", messageID, result.Error)
		return errors.New("database error deleting message")
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}

	log.Printf("[MessageRepository] Message deleted successfully: ID %d", messageID)
	return nil
}

// DeleteByChatID performs a bulk deletion of all messages associated with a given chatID.
func (r *gormMessageRepository) DeleteByChatID(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&domain.Message{})
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error deleting messages for chat ID %d: %v", chatID, result.Error)
		return errors.New("database error deleting messages by chat ID")
	}

	log.Printf("[MessageRepository] Deleted %d messages for chat %d", result.RowsAffected, chatID)
	return nil
}

// CountForUser counts messages across all of a user's chats.
func (r *gormMessageRepository) CountForUser(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, errors.New("invalid user ID")
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("chats.user_id = ?", userID).
		Count(&count).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for user ID %d: %v", userID, err)
		return 0, errors.New("database error counting user messages")
	}

	return count, nil
}

// LastActivityForUser returns the creation time of the user's most recent
// message, or nil when the user has no messages yet.
func (r *gormMessageRepository) LastActivityForUser(ctx context.Context, userID uint) (*time.Time, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var message domain.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("chats.user_id = ?", userID).
		Order("messages.created_at DESC, messages.id DESC").
		First(&message).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[MessageRepository] Database error finding last activity for user ID %d: %v", userID, err)
		return nil, errors.New("database error finding last activity")
	}

	return &message.CreatedAt, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormMessageRepository) validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}

	if message.ChatID == 0 {
		return errors.New("chat ID is required")
	}

	if message.Sender != domain.SenderUser && message.Sender != domain.SenderAssistant {
		return errors.New("invalid message sender")
	}

	if err := r.validateMessageContent(message.Content); err != nil {
		return fmt.Errorf("content validation: %w", err)
	}

	return nil
}

func (r *gormMessageRepository) validateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("message content cannot be empty")
	}

	if len(content) > 100000 {
		return errors.New("message content too long")
	}

	return nil
}

// ===== ERROR HANDLING HELPERS =====

// handleFindError - secure error handling without data leakage.
func (r *gormMessageRepository) handleFindError(err error, message *domain.Message, operation string) (*domain.Message, error) {
	if err == nil {
		return message, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}

	log.Printf("[MessageRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
