package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"teamprompt/internal/service"
	"teamprompt/internal/storage"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &service.ValidationError{Field: "query", Message: "cannot be empty"}, http.StatusBadRequest},
		{"invalid input", fmt.Errorf("bad: %w", service.ErrInvalidInput), http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"storage not found", fmt.Errorf("lookup: %w", storage.ErrNotFound), http.StatusNotFound},
		{"external", service.WrapKind(service.ErrExternalService, errors.New("timeout"), "failed to embed query"), http.StatusBadGateway},
		{"unavailable", service.WrapKind(service.ErrUnavailable, errors.New("dial"), "failed to search"), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := statusFor(tt.err, "default")
			if got != tt.wantStatus {
				t.Errorf("statusFor() status = %d, want %d", got, tt.wantStatus)
			}
			if msg == "" {
				t.Error("statusFor() returned empty message")
			}
		})
	}
}

func TestHandleServiceError(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(context.Background(), w, errors.New("boom"), "Failed to do thing")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "Failed to do thing" {
		t.Errorf("Error = %q, want %q", resp.Error, "Failed to do thing")
	}
}

func TestRootHandler(t *testing.T) {
	w := httptest.NewRecorder()
	RootHandler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["message"] != "TeamPrompt Backend is running" {
		t.Errorf("message = %q", resp["message"])
	}
}
