// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"llm-chat-backend/internal/services"
)

type ChatHandler struct {
	ChatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: chatService}
}

// pathID parses a numeric path variable out of the mux route.
func pathID(r *http.Request, name string) (uint, bool) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CreateChat handles POST /chats. New chats always start with the default
// title; use RenameChat to change it.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}

	chat, err := h.ChatService.CreateChat(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, chat)
}

// GetUserChats handles GET /chats, most recently active first.
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}

	chats, err := h.ChatService.GetUserChats(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chats)
}

// GetChat handles GET /chats/{id} and returns the chat with its messages.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid chat id", http.StatusBadRequest)
		return
	}

	chat, err := h.ChatService.GetChat(r.Context(), email, chatID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	messages, err := h.ChatService.GetChatMessages(r.Context(), email, chatID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chat":     chat,
		"messages": messages,
	})
}

// RenameChat handles PATCH /chats/{id}.
func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid chat id", http.StatusBadRequest)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	chat, err := h.ChatService.RenameChat(r.Context(), email, chatID, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

// DeleteChat handles DELETE /chats/{id}. Messages go with the chat.
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid chat id", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.DeleteChat(r.Context(), email, chatID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "Chat deleted successfully"})
}

// Send handles POST /send/{chat_id}: persists the user message, asks the
// model for a reply, and returns it.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(r, "chat_id")
	if !ok {
		writeError(w, "invalid chat id", http.StatusBadRequest)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, "message is required", http.StatusBadRequest)
		return
	}

	reply, err := h.ChatService.Send(r.Context(), email, chatID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// Continue handles POST /chats/{id}/continue: replays the whole history to
// the model along with the new message and returns the updated transcript.
func (h *ChatHandler) Continue(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid chat id", http.StatusBadRequest)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, "message is required", http.StatusBadRequest)
		return
	}

	result, err := h.ChatService.Continue(r.Context(), email, chatID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Regenerate handles POST /chats/{id}/regenerate: re-answers the latest
// user message, replacing the latest assistant reply if one exists.
func (h *ChatHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid chat id", http.StatusBadRequest)
		return
	}

	message, err := h.ChatService.Regenerate(r.Context(), email, chatID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, message)
}

// EditMessage handles PATCH /{chat_id}/messages/{message_id}.
func (h *ChatHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(r, "chat_id")
	if !ok {
		writeError(w, "invalid chat id", http.StatusBadRequest)
		return
	}
	messageID, ok := pathID(r, "message_id")
	if !ok {
		writeError(w, "invalid message id", http.StatusBadRequest)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, "content is required", http.StatusBadRequest)
		return
	}

	message, err := h.ChatService.EditMessage(r.Context(), email, chatID, messageID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, message)
}

// DeleteMessage handles DELETE /messages/{id}.
func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	messageID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid message id", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.DeleteMessage(r.Context(), email, messageID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "Message deleted successfully"})
}

// GetStats handles GET /stats with per-account usage counters.
func (h *ChatHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}

	stats, err := h.ChatService.Stats(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
