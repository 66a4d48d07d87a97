package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/designlib/pkg/logging"
)

// TestChain tests middleware composition order.
func TestChain(t *testing.T) {
	tests := []struct {
		name              string
		numMiddleware     int
		expectedCallOrder []string
	}{
		{name: "no middleware", numMiddleware: 0, expectedCallOrder: []string{"handler"}},
		{name: "single middleware", numMiddleware: 1, expectedCallOrder: []string{"m1", "handler"}},
		{name: "three middleware", numMiddleware: 3, expectedCallOrder: []string{"m1", "m2", "m3", "handler"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var callOrder []string

			middlewares := make([]func(http.Handler) http.Handler, tt.numMiddleware)
			for i := 0; i < tt.numMiddleware; i++ {
				name := "m" + string(rune('1'+i))
				middlewares[i] = func(next http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						callOrder = append(callOrder, name)
						next.ServeHTTP(w, r)
					})
				}
			}
			handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				callOrder = append(callOrder, "handler")
			})

			Chain(middlewares...)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			if strings.Join(callOrder, ",") != strings.Join(tt.expectedCallOrder, ",") {
				t.Errorf("expected %v, got %v", tt.expectedCallOrder, callOrder)
			}
		})
	}
}

// TestRequestID tests ID generation and propagation.
func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		got := w.Header().Get(RequestIDHeader)
		if len(got) != 36 {
			t.Errorf("expected a UUID, got %q", got)
		}
		if seen != got {
			t.Errorf("context id %q does not match header %q", seen, got)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		handler.ServeHTTP(w, req)
		if w.Header().Get(RequestIDHeader) != "req-123" || seen != "req-123" {
			t.Errorf("request id not propagated")
		}
	})
}

// TestLogger tests the access log line and status capture.
func TestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	var ctxLogger *zerolog.Logger
	handler := Chain(RequestID, Logger(tl.Logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logging.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", nil)
	req.Header.Set(RequestIDHeader, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if ctxLogger == nil || ctxLogger == logging.Default() {
		t.Error("handler did not get the request logger")
	}
	if !tl.ContainsAll(`"status":418`, `"path":"/api/v1/files"`, `"request_id":"abc"`, "http request") {
		t.Errorf("unexpected log output: %s", tl.Output())
	}
}

// TestRecovery tests that panics become 500 envelopes.
func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()
	handler := Recovery(&logger)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

// TestBodyLimit tests oversized bodies fail to read.
func TestBodyLimit(t *testing.T) {
	var readErr error
	handler := BodyLimit(4)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))
	if readErr == nil {
		t.Error("expected read error for oversized body")
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	if readErr != nil {
		t.Errorf("unexpected error %v", readErr)
	}
}

// TestCORS tests preflight handling.
func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://designs.example.com"}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/files", nil)
	req.Header.Set("Origin", "https://designs.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://designs.example.com" {
		t.Errorf("expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q", got)
	}
}
