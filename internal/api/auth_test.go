package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"telegram-dwh/internal/models"
)

func TestRequestCode(t *testing.T) {
	router := newTestRouter(t, &fakeClient{})

	body := strings.NewReader(`{"phone": "+15550100"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/request_code", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RequestCodeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.PhoneCodeHash != "hash-1" {
		t.Errorf("expected phone_code_hash 'hash-1', got %q", resp.PhoneCodeHash)
	}
}

func TestRequestCode_MissingPhone(t *testing.T) {
	router := newTestRouter(t, &fakeClient{})

	req := httptest.NewRequest(http.MethodPost, "/auth/request_code", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestSubmitCode(t *testing.T) {
	router := newTestRouter(t, &fakeClient{validCode: "12345"})

	body := strings.NewReader(`{"phone": "+15550100", "code": "12345", "phone_code_hash": "hash-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/submit_code", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var status models.AuthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !status.Authorized || status.UserID != 1000 {
		t.Errorf("unexpected auth status %+v", status)
	}
}

func TestSubmitCode_WrongCode(t *testing.T) {
	router := newTestRouter(t, &fakeClient{validCode: "12345"})

	body := strings.NewReader(`{"phone": "+15550100", "code": "99999", "phone_code_hash": "hash-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/submit_code", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid code, got %d", w.Code)
	}
}

func TestSubmitCode_PasswordRequired(t *testing.T) {
	fake := &fakeClient{passwordNeeded: true}
	router := newTestRouter(t, fake)

	body := strings.NewReader(`{"phone": "+15550100", "code": "12345", "phone_code_hash": "hash-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/submit_code", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 for missing password, got %d", w.Code)
	}

	// Retrying with the password completes the flow.
	body = strings.NewReader(`{"phone": "+15550100", "code": "12345", "phone_code_hash": "hash-1", "password": "hunter2"}`)
	req = httptest.NewRequest(http.MethodPost, "/auth/submit_code", body)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 with password, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthStatus_NotConnected(t *testing.T) {
	router := newTestRouter(t, &fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var status models.AuthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Authorized {
		t.Error("expected unauthorized status for a disconnected session")
	}
}

func TestLogout_Idempotent(t *testing.T) {
	router := newTestRouter(t, &fakeClient{})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("logout %d: expected status 200, got %d: %s", i, w.Code, w.Body.String())
		}

		var status models.AuthStatus
		if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if status.Authorized {
			t.Errorf("logout %d: expected unauthorized status", i)
		}
	}
}
