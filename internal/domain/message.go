// File: internal/domain/message.go
package domain

import "time"

// Message senders.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message lifecycle states. A user message persisted before the completion
// call stays pending_reply until the assistant reply is committed.
const (
	StatusPendingReply = "pending_reply"
	StatusComplete     = "complete"
)

// Message represents a single message within a chat.
type Message struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ChatID    uint      `json:"chat_id" gorm:"not null;index"` // The ID of the chat this message belongs to
	Sender    string    `json:"sender" gorm:"not null"`        // "user" or "assistant"
	Content   string    `json:"content" gorm:"not null"`
	Status    string    `json:"status" gorm:"not null;default:complete"`
	CreatedAt time.Time `json:"created_at"` // Orders the message within its chat
}
