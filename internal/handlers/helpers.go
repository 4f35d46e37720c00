// File: internal/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"llm-chat-backend/internal/middleware"
	"llm-chat-backend/internal/repository/user"
	chatservice "llm-chat-backend/internal/services/chat"
	"llm-chat-backend/internal/services/user_services"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// subject pulls the authenticated token subject out of the request, or
// replies 401 when the auth middleware did not run.
func subject(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.Subject(r.Context())
	if !ok {
		writeError(w, "could not validate credentials", http.StatusUnauthorized)
	}
	return email, ok
}

// writeServiceError maps service-layer errors onto the HTTP error
// taxonomy: NotFound→404, validation→400, conflict→409, upstream→502,
// anything else→500 with a generic body.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case chatservice.IsNotFound(err) || errors.Is(err, user.ErrUserNotFound):
		writeError(w, "not found", http.StatusNotFound)
	case chatservice.IsValidation(err):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, user.ErrDuplicateEmail):
		writeError(w, "email already registered", http.StatusConflict)
	case errors.Is(err, user_services.ErrInvalidCredentials):
		writeError(w, "invalid credentials", http.StatusForbidden)
	case chatservice.IsUpstream(err):
		writeError(w, "completion service unavailable", http.StatusBadGateway)
	default:
		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}
