// File: internal/domain/chat.go
package domain

import "time"

// DefaultChatTitle is the placeholder title a chat is created with.
const DefaultChatTitle = "New Chat"

// Chat represents a single conversation thread.
type Chat struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"` // The ID of the user who owns the chat
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"` // Bumped on every message addition or title change
}
