// File: internal/services/ai/errors.go
package ai

import (
	"context"
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeTimeout    ErrorType = "TIMEOUT"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type AIError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	errType := ErrTypeProvider
	if errors.Is(cause, context.DeadlineExceeded) {
		errType = ErrTypeTimeout
	}
	return &AIError{Type: errType, Operation: operation, Message: msg, Cause: cause}
}

// IsUpstreamFailure reports whether err originated in the completion
// provider, as opposed to local validation or persistence.
func IsUpstreamFailure(err error) bool {
	var aiErr *AIError
	return errors.As(err, &aiErr) && (aiErr.Type == ErrTypeProvider || aiErr.Type == ErrTypeTimeout)
}
