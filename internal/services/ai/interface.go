// File: internal/services/ai/interface.go
package ai

import "context"

// Turn roles sent to the completion provider.
const (
	RoleUser      = "user"
	RoleSystem    = "system"
	RoleAssistant = "assistant"
)

// Turn is one exchange unit in a completion request.
type Turn struct {
	Role    string
	Content string
}

// CompletionProvider turns a sequence of conversation turns into a reply.
// No streaming; failure surfaces as a typed *AIError.
type CompletionProvider interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
	HealthCheck(ctx context.Context) error
}
