// File: internal/services/file_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"llm-chat-backend/internal/domain"
	"llm-chat-backend/internal/repository/chat"
	"llm-chat-backend/internal/repository/message"
	"llm-chat-backend/internal/repository/user"
	chatservice "llm-chat-backend/internal/services/chat"
)

// Sentinel format for embedding a file reference in message content.
const (
	fileSentinelPrefix = "[file:"
	fileSentinelSuffix = "]"
)

// WrapFilePath embeds a stored file path in the message-content sentinel.
func WrapFilePath(path string) string {
	return fileSentinelPrefix + path + fileSentinelSuffix
}

// ParseFilePath extracts the path from sentinel-wrapped message content.
// The format is exact: "[file:" prefix and "]" suffix, nothing else.
func ParseFilePath(content string) (string, bool) {
	if !strings.HasPrefix(content, fileSentinelPrefix) || !strings.HasSuffix(content, fileSentinelSuffix) {
		return "", false
	}
	return content[len(fileSentinelPrefix) : len(content)-len(fileSentinelSuffix)], true
}

// FileService stores uploads on disk and records each one as a user
// message carrying a sentinel-wrapped path.
type FileService struct {
	uploadDir   string
	userRepo    user.UserRepository
	chatRepo    chat.ChatRepository
	messageRepo message.MessageRepository
	logger      Logger
}

func NewFileService(
	uploadDir string,
	userRepo user.UserRepository,
	chatRepo chat.ChatRepository,
	messageRepo message.MessageRepository,
	logger Logger,
) (*FileService, error) {
	if uploadDir == "" {
		return nil, errors.New("upload directory is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &FileService{
		uploadDir:   uploadDir,
		userRepo:    userRepo,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}, nil
}

// SaveUpload writes the stream to disk under a collision-resistant name
// scoped by chat ID and records the reference as a user message.
func (s *FileService) SaveUpload(ctx context.Context, email string, chatID uint, filename string, data io.Reader) (*domain.Message, error) {
	userRecord, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, chatservice.NewNotFoundError("upload", "user not found")
	}

	chatRecord, err := s.chatRepo.FindByIDForUser(ctx, chatID, userRecord.ID)
	if err != nil {
		return nil, chatservice.NewNotFoundError("upload", "chat not found")
	}

	ext := filepath.Ext(filename)
	safeName := fmt.Sprintf("%d_%s%s", chatRecord.ID, strings.ReplaceAll(uuid.New().String(), "-", ""), ext)
	path := filepath.Join(s.uploadDir, safeName)

	out, err := os.Create(path)
	if err != nil {
		return nil, chatservice.NewInternalError("upload", "could not store file", err)
	}
	if _, err := io.Copy(out, data); err != nil {
		out.Close()
		os.Remove(path)
		return nil, chatservice.NewInternalError("upload", "could not store file", err)
	}
	if err := out.Close(); err != nil {
		return nil, chatservice.NewInternalError("upload", "could not store file", err)
	}

	fileMessage, err := s.messageRepo.Create(ctx, &domain.Message{
		ChatID:  chatRecord.ID,
		Sender:  domain.SenderUser,
		Content: WrapFilePath(path),
	})
	if err != nil {
		os.Remove(path)
		return nil, chatservice.NewInternalError("upload", "could not record file message", err)
	}

	s.logger.Info("file uploaded", "chat_id", chatRecord.ID, "message_id", fileMessage.ID)
	return fileMessage, nil
}

// ResolveFile maps a file-message ID back to a path on disk. Only
// user-sent messages in the caller's own chats qualify, the sentinel must
// parse, and the file must still exist; any miss is the same NotFound.
func (s *FileService) ResolveFile(ctx context.Context, email string, messageID uint) (string, error) {
	userRecord, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", chatservice.NewNotFoundError("get_file", "user not found")
	}

	msg, err := s.messageRepo.FindByIDForUser(ctx, messageID, userRecord.ID)
	if err != nil || msg.Sender != domain.SenderUser {
		return "", chatservice.NewNotFoundError("get_file", "file not found")
	}

	path, ok := ParseFilePath(msg.Content)
	if !ok {
		return "", chatservice.NewNotFoundError("get_file", "file not found")
	}

	if _, err := os.Stat(path); err != nil {
		return "", chatservice.NewNotFoundError("get_file", "file does not exist on server")
	}

	return path, nil
}
