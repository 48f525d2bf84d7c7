package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"telegram-dwh/internal/logic"
	"telegram-dwh/internal/models"
)

var errInvalidLimit = errors.New("invalid limit")

const (
	defaultChatLimit    = 20
	defaultMessageLimit = 50
	maxPageLimit        = 100
)

// ChatHandler handles chat listing, history and sending
type ChatHandler struct {
	svc *logic.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(svc *logic.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// List handles GET /chats
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.ChatTypeAll
	if v := q.Get("filter_type"); v != "" {
		filter = models.ChatType(strings.ToLower(v))
		if !filter.Valid() {
			http.Error(w, "Invalid filter_type", http.StatusBadRequest)
			return
		}
	}

	limit, err := pageLimit(q.Get("limit"), defaultChatLimit)
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	cursor, err := parseCursor(q)
	if err != nil {
		http.Error(w, "Invalid offset", http.StatusBadRequest)
		return
	}

	// The stats window and the listing are independent upstream reads,
	// so they run in parallel.
	var (
		stats    models.ChatStats
		statsErr error
		wg       sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		stats, statsErr = h.svc.Stats(r.Context())
	}()

	chats, next, err := h.svc.ListChats(r.Context(), filter, limit, cursor)
	wg.Wait()
	if err != nil {
		writeError(w, err)
		return
	}
	if statsErr != nil {
		writeError(w, statsErr)
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.ChatListing{
		Stats:      stats,
		Chats:      chats,
		NextOffset: next,
	})
}

// Messages handles GET /chats/{id}/messages
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	limit, err := pageLimit(q.Get("limit"), defaultMessageLimit)
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	var offsetID int64
	if v := q.Get("offset_id"); v != "" {
		offsetID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid offset_id", http.StatusBadRequest)
			return
		}
	}

	msgs, err := h.svc.ChatMessages(r.Context(), chatID, limit, offsetID)
	if err != nil {
		writeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msgs)
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage handles POST /chats/{id}/send_message
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "Text is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.SendMessage(r.Context(), chatID, req.Text); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// pageLimit parses a limit parameter, applying the default and clamping
// to the allowed page size.
func pageLimit(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errInvalidLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return limit, nil
}

// parseCursor reads the composite dialog offset from query parameters.
// Absent parameters stay zero; the upstream treats a zero cursor as the
// start of the list.
func parseCursor(q map[string][]string) (models.DialogCursor, error) {
	get := func(key string) string {
		if vs := q[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	var cursor models.DialogCursor
	var err error
	if v := get("offset_id"); v != "" {
		if cursor.OffsetID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return models.DialogCursor{}, err
		}
	}
	if v := get("offset_date"); v != "" {
		if cursor.OffsetDate, err = strconv.ParseInt(v, 10, 64); err != nil {
			return models.DialogCursor{}, err
		}
	}
	if v := get("offset_peer_id"); v != "" {
		if cursor.OffsetPeerID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return models.DialogCursor{}, err
		}
	}
	cursor.OffsetPeerType = get("offset_peer_type")
	return cursor, nil
}
