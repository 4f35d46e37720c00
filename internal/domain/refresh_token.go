// File: internal/domain/refresh_token.go
package domain

import "time"

// RefreshToken is a server-side record of a currently honorable refresh
// token. A refresh token is only accepted if it both decodes and is still
// present here, so deleting the row is the revocation mechanism.
type RefreshToken struct {
	ID        uint      `gorm:"primarykey"`
	TokenHash string    `gorm:"uniqueIndex;not null"` // SHA-256 of the raw token, never the token itself
	Subject   string    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
