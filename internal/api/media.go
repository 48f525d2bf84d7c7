package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"telegram-dwh/internal/media"
)

// MediaHandler serves cached media blobs and avatars
type MediaHandler struct {
	store *media.Store
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(store *media.Store) *MediaHandler {
	return &MediaHandler{store: store}
}

// Media handles GET /media/{chat_id}/{message_id}
func (h *MediaHandler) Media(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.PathValue("chat_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}
	messageID, err := strconv.ParseInt(r.PathValue("message_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	blob, err := h.store.OpenMedia(r.Context(), chatID, messageID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.serveBlob(w, r, blob)
}

// Avatar handles GET /chat_avatar/{chat_id}
func (h *MediaHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.PathValue("chat_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	blob, err := h.store.OpenAvatar(r.Context(), chatID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.serveBlob(w, r, blob)
}

// serveBlob streams a cached file with conditional and range support.
// ServeContent handles If-None-Match against the ETag header and Range
// requests against the file.
func (h *MediaHandler) serveBlob(w http.ResponseWriter, r *http.Request, blob *media.Blob) {
	f, err := os.Open(blob.Path)
	if err != nil {
		http.Error(w, "Failed to open cached media", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("ETag", blob.ETag)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, filepath.Base(blob.Path), blob.ModTime, f)
}
