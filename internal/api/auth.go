package api

import (
	"encoding/json"
	"net/http"

	"telegram-dwh/internal/telegram"
)

// AuthHandler handles the phone login flow
type AuthHandler struct {
	gateway *telegram.Gateway
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gateway *telegram.Gateway) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

// RequestCodeRequest represents the request body for starting login
type RequestCodeRequest struct {
	Phone string `json:"phone"`
}

// RequestCodeResponse carries the opaque hash the client must echo back
// together with the code the user received.
type RequestCodeResponse struct {
	PhoneCodeHash string `json:"phone_code_hash"`
}

// RequestCode handles POST /auth/request_code
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Phone == "" {
		http.Error(w, "Phone is required", http.StatusBadRequest)
		return
	}

	hash, err := h.gateway.RequestCode(r.Context(), req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RequestCodeResponse{PhoneCodeHash: hash})
}

// SubmitCodeRequest represents the request body for completing login.
// Password is only needed when the account has two-factor auth enabled.
type SubmitCodeRequest struct {
	Phone         string `json:"phone"`
	Code          string `json:"code"`
	PhoneCodeHash string `json:"phone_code_hash"`
	Password      string `json:"password,omitempty"`
}

// SubmitCode handles POST /auth/submit_code
func (h *AuthHandler) SubmitCode(w http.ResponseWriter, r *http.Request) {
	var req SubmitCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Phone == "" || req.Code == "" || req.PhoneCodeHash == "" {
		http.Error(w, "Phone, code and phone_code_hash are required", http.StatusBadRequest)
		return
	}

	status, err := h.gateway.SubmitCode(r.Context(), req.Phone, req.PhoneCodeHash, req.Code, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Status handles GET /auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.gateway.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	status, err := h.gateway.Logout(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
