package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentstation/designlib/pkg/errors"
)

// TestFail tests the Fail helper.
func TestFail(t *testing.T) {
	resp := Fail("TEST_ERROR", "Test error message", "Additional details")

	if resp.Data != nil {
		t.Error("expected Data to be nil")
	}
	if resp.Error == nil {
		t.Fatal("expected Error to be set")
	}
	if resp.Error.Code != "TEST_ERROR" {
		t.Errorf("expected Code=TEST_ERROR, got %s", resp.Error.Code)
	}
}

// TestOK tests the envelope written for success.
func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, map[string]string{"name": "plan1.pdf"})

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var body struct {
		Data  map[string]string `json:"data"`
		Error *Error            `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Data["name"] != "plan1.pdf" || body.Error != nil {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

// TestErrorFromType tests the error to status mapping.
func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid name", errors.NewInvalidNameError("a/b", "separator"), http.StatusBadRequest, "BAD_REQUEST"},
		{"validation", errors.NewValidationError("category", "x", "unknown"), http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", errors.NewNotFoundError("file", "a.pdf"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", errors.NewConflictError("file_metadata.csv", "abc", 409), http.StatusConflict, "CONFLICT"},
		{"wrapped not found", fmt.Errorf("get: %w", errors.NewNotFoundError("file", "a.pdf")), http.StatusNotFound, "NOT_FOUND"},
		{"remote", errors.NewRemoteSyncError("file_metadata.csv", 1, errors.NewUnavailableError("github", "fetch", nil)), http.StatusBadGateway, "REMOTE_ERROR"},
		{"corrupt", errors.NewCorruptLedgerError("/data/file_metadata.csv", 2, nil), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromType(w, tt.err)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			var resp Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("expected code %s, got %+v", tt.code, resp.Error)
			}
		})
	}
}
