package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"llm-chat-backend/internal/services/token"
)

type contextKey string

// SubjectKey holds the authenticated token subject (the user's email).
const SubjectKey contextKey = "subject"

// NewAuthMiddleware validates the bearer token on every request and stores
// its subject in the request context. Every failure mode gets the same
// generic 401 body.
func NewAuthMiddleware(tokenService *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := tokenService.SubjectFromBearer(r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "could not validate credentials"})
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the authenticated subject from a request context.
func Subject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok && subject != ""
}
