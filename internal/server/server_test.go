package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/pkg/logging"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	cat, err := designlib.New("/data",
		designlib.WithFs(afero.NewMemMapFs()),
		designlib.WithLogger(logging.NewNopLogger()),
	)
	if err != nil {
		t.Fatalf("designlib.New() failed: %v", err)
	}
	logger := zerolog.Nop()
	srv := New(cat, cfg, &logger)
	srv.Start()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return srv, ts
}

func decode(t *testing.T, resp *http.Response, target any) envelope {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if target != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, target); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return env
}

func upload(t *testing.T, ts *httptest.Server, filename, cat string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(data)
	_ = mw.WriteField("category", cat)
	_ = mw.Close()

	resp, err := http.Post(ts.URL+"/api/v1/files", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	return resp
}

func do(t *testing.T, method, url string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

// TestFileLifecycle exercises upload, list, download, recategorize and delete.
func TestFileLifecycle(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	api := ts.URL + "/api/v1"

	resp := upload(t, ts, "plan1.pdf", "2d plans", []byte("%PDF-1.4"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var up struct {
		Record struct {
			Name     string `json:"name"`
			Category string `json:"category"`
		} `json:"record"`
		Created bool `json:"created"`
	}
	decode(t, resp, &up)
	if up.Record.Name != "plan1.pdf" || up.Record.Category != "2D Plans" || !up.Created {
		t.Errorf("unexpected upload result %+v", up)
	}

	// same pair again is 200, not created
	resp = upload(t, ts, "plan1.pdf", "2D Plans", []byte("%PDF-1.5"))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for re-upload, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	var list struct {
		Files []map[string]any `json:"files"`
		Count int              `json:"count"`
	}
	decode(t, do(t, http.MethodGet, api+"/files?category=2D%20Plans", ""), &list)
	if list.Count != 1 {
		t.Errorf("expected 1 file, got %d", list.Count)
	}

	resp = do(t, http.MethodGet, api+"/files/plan1.pdf", "")
	got := new(bytes.Buffer)
	_, _ = got.ReadFrom(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || got.String() != "%PDF-1.5" {
		t.Errorf("download returned %d %q", resp.StatusCode, got.String())
	}

	resp = do(t, http.MethodPut, api+"/files/plan1.pdf/category", `{"from":"2D Plans","to":"3D Plans"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("recategorize returned %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	decode(t, do(t, http.MethodGet, api+"/files?category=3D%20Plans", ""), &list)
	if list.Count != 1 {
		t.Errorf("expected recategorized file, got %d", list.Count)
	}

	resp = do(t, http.MethodDelete, api+"/files/plan1.pdf", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete returned %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = do(t, http.MethodGet, api+"/files/plan1.pdf", "")
	env := decode(t, resp, nil)
	if resp.StatusCode != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("expected 404 envelope, got %d %+v", resp.StatusCode, env.Error)
	}
}

// TestUploadValidation checks bad requests never reach the catalog.
func TestUploadValidation(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	tests := []struct {
		name     string
		filename string
		category string
	}{
		{"unknown category", "a.pdf", "Sketches"},
		{"missing category", "a.pdf", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upload(t, ts, tt.filename, tt.category, []byte("x"))
			env := decode(t, resp, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
			if env.Error == nil || env.Error.Code != "BAD_REQUEST" {
				t.Errorf("expected BAD_REQUEST envelope")
			}
		})
	}

	var list struct {
		Count int `json:"count"`
	}
	decode(t, do(t, http.MethodGet, ts.URL+"/api/v1/files", ""), &list)
	if list.Count != 0 {
		t.Errorf("expected empty catalog, got %d", list.Count)
	}
}

// TestUploadTooLarge checks the body limit.
func TestUploadTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUploadBytes = 64
	_, ts := newTestServer(t, cfg)

	resp := upload(t, ts, "big.bin", "Other", bytes.Repeat([]byte("x"), 1024))
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge && resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 413 or 400, got %d", resp.StatusCode)
	}
}

// TestDeleteAllRequiresConfirm checks the purge guard.
func TestDeleteAllRequiresConfirm(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	_ = upload(t, ts, "a.pdf", "Other", []byte("x")).Body.Close()

	resp := do(t, http.MethodDelete, ts.URL+"/api/v1/files", "")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without confirm, got %d", resp.StatusCode)
	}

	var res struct {
		Removed []map[string]any `json:"removed"`
	}
	resp = do(t, http.MethodDelete, ts.URL+"/api/v1/files?confirm=true", "")
	decode(t, resp, &res)
	if resp.StatusCode != http.StatusOK || len(res.Removed) != 1 {
		t.Errorf("purge returned %d with %d removed", resp.StatusCode, len(res.Removed))
	}
}

// TestStatsAndActivity checks the read-only dashboards.
func TestStatsAndActivity(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	_ = upload(t, ts, "a.pdf", "2D Plans", []byte("1234")).Body.Close()
	_ = upload(t, ts, "b.obj", "3D Plans", []byte("12")).Body.Close()

	var stats struct {
		Total      int            `json:"total"`
		ByCategory map[string]int `json:"by_category"`
		Bytes      int64          `json:"bytes"`
	}
	decode(t, do(t, http.MethodGet, ts.URL+"/api/v1/stats", ""), &stats)
	if stats.Total != 2 || stats.ByCategory["2D Plans"] != 1 || stats.Bytes != 6 {
		t.Errorf("unexpected stats %+v", stats)
	}

	var act struct {
		Count int `json:"count"`
	}
	decode(t, do(t, http.MethodGet, ts.URL+"/api/v1/activity?limit=1", ""), &act)
	if act.Count != 1 {
		t.Errorf("expected 1 activity entry, got %d", act.Count)
	}

	resp := do(t, http.MethodGet, ts.URL+"/api/v1/activity?limit=-1", "")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for negative limit, got %d", resp.StatusCode)
	}
}

// TestMirrorDisabled checks mirror endpoints without a remote.
func TestMirrorDisabled(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	resp := do(t, http.MethodPost, ts.URL+"/api/v1/mirror/push", "")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

// TestWebSocketEvents checks catalog hooks reach websocket clients.
func TestWebSocketEvents(t *testing.T) {
	srv, ts := newTestServer(t, DefaultConfig())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/events/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.WSHub().ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	_ = upload(t, ts, "plan1.pdf", "Other", []byte("x")).Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("no file.added message: %v", err)
		}
		if msg.Type == "file.added" {
			if !strings.Contains(string(msg.Data), "plan1.pdf") {
				t.Errorf("unexpected payload %s", msg.Data)
			}
			return
		}
	}
}

// TestUnknownRoute checks unmatched API paths get a JSON 404.
func TestUnknownRoute(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/nope", "")
	env := decode(t, resp, nil)
	if resp.StatusCode != http.StatusNotFound || env.Error == nil {
		t.Errorf("expected JSON 404, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
}
