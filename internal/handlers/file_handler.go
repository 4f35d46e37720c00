// File: internal/handlers/file_handler.go
package handlers

import (
	"net/http"

	"llm-chat-backend/internal/services"
)

// maxUploadBytes caps multipart uploads at 25 MiB.
const maxUploadBytes = 25 << 20

type FileHandler struct {
	FileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{FileService: fileService}
}

// Upload handles POST /upload/{chat_id}: stores the multipart "file" part
// on disk and records it in the chat as a file message.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	chatID, ok := pathID(r, "chat_id")
	if !ok {
		writeError(w, "invalid chat id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, "could not parse upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	message, err := h.FileService.SaveUpload(r.Context(), email, chatID, header.Filename, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

// Download handles GET /files/{id}: resolves a file message back to the
// stored file and streams it.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	email, ok := subject(w, r)
	if !ok {
		return
	}
	messageID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid message id", http.StatusBadRequest)
		return
	}

	path, err := h.FileService.ResolveFile(r.Context(), email, messageID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	http.ServeFile(w, r, path)
}
