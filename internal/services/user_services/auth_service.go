// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"llm-chat-backend/internal/domain"
	"llm-chat-backend/internal/repository/user"
	"llm-chat-backend/internal/services/token"
)

// ErrInvalidCredentials covers both unknown email and wrong password; the
// two must stay indistinguishable to the client.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	userRepo     user.UserRepository
	tokenService *token.Service
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, tokenService *token.Service, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Register creates a new account. A duplicate email surfaces as
// user.ErrDuplicateEmail so the handler can answer with a conflict.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	newUser := &domain.User{Email: email}
	if err := newUser.IsValid(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := newUser.HashPassword(password); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	createdUser, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			s.logger.Warn("registration failed - email already registered")
			return nil, user.ErrDuplicateEmail
		}
		s.logger.Error("user creation failed", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully", "user_id", createdUser.ID)
	return createdUser, nil
}

// Login verifies credentials and issues an access/refresh token pair. The
// refresh token enters the live-token set on issuance.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	userRecord, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed - user not found")
		return nil, ErrInvalidCredentials
	}

	if err := userRecord.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "user_id", userRecord.ID)
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokenService.IssueAccessToken(userRecord.Email)
	if err != nil {
		s.logger.Error("access token generation failed", "error", err, "user_id", userRecord.ID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refreshToken, err := s.tokenService.IssueRefreshToken(ctx, userRecord.Email)
	if err != nil {
		s.logger.Error("refresh token generation failed", "error", err, "user_id", userRecord.ID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "user_id", userRecord.ID)
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// GetAccount returns the account for a token subject.
func (s *AuthService) GetAccount(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}

// UpdateAccount changes email and/or password. Existing tokens keep the old
// subject, so the handler forces a re-login after a successful update.
func (s *AuthService) UpdateAccount(ctx context.Context, email, newEmail, newPassword string) (*domain.User, error) {
	userRecord, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if newEmail != "" {
		userRecord.Email = strings.TrimSpace(strings.ToLower(newEmail))
		if err := userRecord.IsValid(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}
	if newPassword != "" {
		if err := userRecord.HashPassword(newPassword); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	if err := s.userRepo.Update(ctx, userRecord); err != nil {
		s.logger.Error("account update failed", "error", err, "user_id", userRecord.ID)
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	s.logger.Info("account updated", "user_id", userRecord.ID)
	return userRecord, nil
}
