// File: internal/services/ai/openai_provider_test.go
package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubProvider points the client at a local endpoint that answers every
// chat completion with a canned reply.
func newStubProvider(t *testing.T) *OpenAIProvider {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"stub reply"}}]}`))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 5 * time.Second
	provider, err := NewOpenAIProvider(cfg)
	require.NoError(t, err)
	return provider
}

func TestCompleteAcceptsAllKnownRoles(t *testing.T) {
	provider := newStubProvider(t)

	reply, err := provider.Complete(context.Background(), []Turn{
		{Role: RoleSystem, Content: "context"},
		{Role: RoleAssistant, Content: "earlier reply"},
		{Role: RoleUser, Content: "question"},
	})
	require.NoError(t, err)
	assert.Equal(t, "stub reply", reply)
}

func TestCompleteRejectsUnknownRole(t *testing.T) {
	provider := newStubProvider(t)

	_, err := provider.Complete(context.Background(), []Turn{
		{Role: "moderator", Content: "question"},
	})
	require.Error(t, err)

	var aiErr *AIError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, ErrTypeValidation, aiErr.Type)
}

func TestCompleteRejectsEmptyTurns(t *testing.T) {
	provider := newStubProvider(t)

	_, err := provider.Complete(context.Background(), nil)
	require.Error(t, err)

	var aiErr *AIError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, ErrTypeValidation, aiErr.Type)
}
