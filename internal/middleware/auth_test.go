// File: internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokenrepo "llm-chat-backend/internal/repository/token"
	"llm-chat-backend/internal/services/token"
)

func newTestTokenService(t *testing.T) *token.Service {
	t.Helper()

	svc, err := token.NewService(&token.Config{
		SecretKey:  "test-secret",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, tokenrepo.NewMemoryStore(), nil)
	require.NoError(t, err)
	return svc
}

func TestAuthMiddlewareStoresSubject(t *testing.T) {
	svc := newTestTokenService(t)
	access, err := svc.IssueAccessToken("alice@example.com")
	require.NoError(t, err)

	var gotSubject string
	handler := NewAuthMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = Subject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", gotSubject)
}

func TestAuthMiddlewareRejectsBadHeaders(t *testing.T) {
	svc := newTestTokenService(t)

	handler := NewAuthMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without valid credentials")
	}))

	for _, header := range []string{
		"",
		"Bearer",
		"Bearer not-a-token",
		"Basic dXNlcjpwYXNz",
	} {
		req := httptest.NewRequest(http.MethodGet, "/chats", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.JSONEq(t, `{"error":"could not validate credentials"}`, rec.Body.String(), "header %q", header)
	}
}
