package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"telegram-dwh/internal/persona"
)

// PersonaHandler exposes persona analysis. analyzer is nil when no AI
// credentials are configured.
type PersonaHandler struct {
	analyzer *persona.Analyzer
}

// NewPersonaHandler creates a new persona handler
func NewPersonaHandler(analyzer *persona.Analyzer) *PersonaHandler {
	return &PersonaHandler{analyzer: analyzer}
}

// Mirror handles GET /chats/{id}/persona_mirror
func (h *PersonaHandler) Mirror(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		http.Error(w, "Persona analysis is not configured", http.StatusInternalServerError)
		return
	}

	chatID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	target := r.URL.Query().Get("analyze_person")
	if target == "" {
		target = persona.TargetSelf
	}

	insight, err := h.analyzer.Analyze(r.Context(), chatID, target)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(insight)
}
