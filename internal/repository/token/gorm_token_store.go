// File: internal/repository/token/gorm_token_store.go
package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"llm-chat-backend/internal/domain"
)

// hashToken derives the storage key from a raw token. Raw refresh tokens
// never touch the database.
func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// GormStore is the durable live-token set. Revocations survive restarts,
// unlike the in-memory variant.
type gormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) RefreshTokenStore {
	return &gormTokenStore{db: db}
}

func (s *gormTokenStore) Save(ctx context.Context, rawToken, subject string, expiresAt time.Time) error {
	if rawToken == "" || subject == "" {
		return errors.New("token and subject are required")
	}

	record := &domain.RefreshToken{
		TokenHash: hashToken(rawToken),
		Subject:   subject,
		ExpiresAt: expiresAt,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		log.Printf("[TokenStore] Database error saving refresh token for subject %s: %v", subject, err)
		return errors.New("database error saving refresh token")
	}
	return nil
}

func (s *gormTokenStore) Exists(ctx context.Context, rawToken string) (bool, error) {
	if rawToken == "" {
		return false, nil
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.RefreshToken{}).
		Where("token_hash = ? AND expires_at > ?", hashToken(rawToken), time.Now()).
		Count(&count).Error
	if err != nil {
		log.Printf("[TokenStore] Database error checking refresh token: %v", err)
		return false, errors.New("database error checking refresh token")
	}

	return count > 0, nil
}

func (s *gormTokenStore) Delete(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	err := s.db.WithContext(ctx).
		Where("token_hash = ?", hashToken(rawToken)).
		Delete(&domain.RefreshToken{}).Error
	if err != nil {
		log.Printf("[TokenStore] Database error deleting refresh token: %v", err)
		return errors.New("database error deleting refresh token")
	}
	return nil
}

// DeleteExpired prunes tokens past their expiry. Callers may run this
// periodically; correctness does not depend on it because Exists also
// checks expiry.
func (s *gormTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&domain.RefreshToken{})
	if result.Error != nil {
		log.Printf("[TokenStore] Database error pruning expired refresh tokens: %v", result.Error)
		return 0, errors.New("database error pruning refresh tokens")
	}

	if result.RowsAffected > 0 {
		log.Printf("[TokenStore] Pruned %d expired refresh tokens", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
