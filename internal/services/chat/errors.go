// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeUpstream   ErrorType = "UPSTREAM"
	ErrTypeInternal   ErrorType = "INTERNAL"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

// NewNotFoundError covers both truly missing resources and foreign-owned
// ones; the two are deliberately indistinguishable to the caller.
func NewNotFoundError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeNotFound, Operation: operation, Message: msg}
}

func NewUpstreamError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeUpstream, Operation: operation, Message: msg, Cause: cause}
}

func NewInternalError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeInternal, Operation: operation, Message: msg, Cause: cause}
}

func IsNotFound(err error) bool {
	var chatErr *ChatError
	return errors.As(err, &chatErr) && chatErr.Type == ErrTypeNotFound
}

func IsUpstream(err error) bool {
	var chatErr *ChatError
	return errors.As(err, &chatErr) && chatErr.Type == ErrTypeUpstream
}

func IsValidation(err error) bool {
	var chatErr *ChatError
	return errors.As(err, &chatErr) && chatErr.Type == ErrTypeValidation
}
