// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"net/http"

	"llm-chat-backend/internal/services/token"
	"llm-chat-backend/internal/services/user_services"
)

type AuthHandler struct {
	AuthService  *user_services.AuthService
	TokenService *token.Service
}

func NewAuthHandler(authService *user_services.AuthService, tokenService *token.Service) *AuthHandler {
	return &AuthHandler{
		AuthService:  authService,
		TokenService: tokenService,
	}
}

// Register handles POST /users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	if _, err := h.AuthService.Register(r.Context(), req.Email, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"detail": "User registered successfully"})
}

// Login handles POST /login and returns an access/refresh token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /refresh: exchanges a live refresh token for a new
// access token. The refresh token is not rotated.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	accessToken, err := h.TokenService.RefreshAccess(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, "invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

// Logout handles POST /logout and revokes the presented refresh token so
// it stops being honorable immediately.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := subject(w, r); !ok {
		return
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Body is optional; an absent refresh token just means nothing to revoke.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.RefreshToken != "" {
		if err := h.TokenService.Revoke(r.Context(), req.RefreshToken); err != nil {
			writeError(w, "could not revoke token", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "Logged out successfully"})
}

// GetMe handles GET /users/me.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}

	account, err := h.AuthService.GetAccount(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// UpdateMe handles PATCH /users/me. A successful update invalidates the
// session from the client's point of view: the response demands re-login.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if _, err := h.AuthService.UpdateAccount(r.Context(), email, req.Email, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, "Account updated. Please log in again with your new credentials.", http.StatusUnauthorized)
}
