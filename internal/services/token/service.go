// File: internal/services/token/service.go
package token

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	tokenrepo "llm-chat-backend/internal/repository/token"
)

// Token type tags carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Logger defines the logging interface this service needs.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

// Claims are the decoded contents of a token this service issued.
type Claims struct {
	Subject   string
	Type      string
	ExpiresAt time.Time
}

// Service issues and validates access/refresh token pairs. Refresh tokens
// are additionally tracked in an injected store: one is honored only while
// it both decodes and is still present there.
type Service struct {
	config *Config
	store  tokenrepo.RefreshTokenStore
	logger Logger

	// now is swappable for expiry boundary tests.
	now func() time.Time
}

func NewService(config *Config, store tokenrepo.RefreshTokenStore, logger Logger) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("token service config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("token service config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("refresh token store is required")
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Service{
		config: config,
		store:  store,
		logger: logger,
		now:    time.Now,
	}, nil
}

// IssueAccessToken signs a short-lived access token for the subject.
func (s *Service) IssueAccessToken(subject string) (string, error) {
	return s.sign(subject, TypeAccess, s.config.AccessTTL)
}

// IssueRefreshToken signs a refresh token and records it in the live-token
// store; the store entry is what makes the token honorable later.
func (s *Service) IssueRefreshToken(ctx context.Context, subject string) (string, error) {
	expiresAt := s.now().Add(s.config.RefreshTTL)
	signed, err := s.sign(subject, TypeRefresh, s.config.RefreshTTL)
	if err != nil {
		return "", err
	}

	if err := s.store.Save(ctx, signed, subject, expiresAt); err != nil {
		s.logger.Error("failed to persist refresh token", "subject", subject, "error", err)
		return "", fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return signed, nil
}

// ValidateAndDecode verifies signature and expiry. Every failure mode maps
// to the same ErrInvalidToken so nothing about the cause leaks to clients.
func (s *Service) ValidateAndDecode(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	if err != nil || !parsed.Valid {
		s.logger.Debug("token validation failed", "error", err)
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subject, _ := mapClaims["sub"].(string)
	tokenType, _ := mapClaims["type"].(string)
	if subject == "" || tokenType == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{Subject: subject, Type: tokenType}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}

// RefreshAccess exchanges a live refresh token for a fresh access token.
// The refresh token itself is not rotated.
func (s *Service) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.ValidateAndDecode(refreshToken)
	if err != nil {
		return "", ErrRefreshRejected
	}
	if claims.Type != TypeRefresh {
		s.logger.Warn("refresh attempted with non-refresh token", "subject", claims.Subject, "type", claims.Type)
		return "", ErrRefreshRejected
	}

	live, err := s.store.Exists(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to check refresh token: %w", err)
	}
	if !live {
		s.logger.Warn("refresh attempted with revoked token", "subject", claims.Subject)
		return "", ErrRefreshRejected
	}

	return s.IssueAccessToken(claims.Subject)
}

// Revoke removes a refresh token from the live-token store. Logout calls
// this so the refresh token stops working immediately.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.store.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// SubjectFromBearer extracts and validates the subject from an
// Authorization header value. Any failure, scheme or token, yields the
// same ErrUnauthenticated.
func (s *Service) SubjectFromBearer(header string) (string, error) {
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", ErrUnauthenticated
	}

	claims, err := s.ValidateAndDecode(strings.TrimSpace(rest))
	if err != nil || claims.Subject == "" {
		return "", ErrUnauthenticated
	}

	return claims.Subject, nil
}

func (s *Service) sign(subject, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"type": tokenType,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}
