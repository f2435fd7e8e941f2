package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/raysh454/guardscan/internal/app"
	"github.com/raysh454/guardscan/internal/model"
	"github.com/raysh454/guardscan/internal/reputation"
	"github.com/raysh454/guardscan/internal/server"
	"github.com/raysh454/guardscan/internal/testutil"
)

type testEnv struct {
	srv    *server.Server
	rep    *testutil.DummyReputationClient
	ai     *testutil.DummyGenerator
	logger *testutil.DummyLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		rep:    &testutil.DummyReputationClient{},
		ai:     &testutil.DummyGenerator{Text: "report text"},
		logger: &testutil.DummyLogger{},
	}

	cfg := app.DefaultConfig()
	cfg.StorageRoot = t.TempDir()

	srv, err := server.NewServer(server.Config{
		AppConfig:  cfg,
		Logger:     env.logger,
		Reputation: env.rep,
		Generator:  env.ai,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(srv.Close)

	env.srv = srv
	return env
}

func doRequest(t *testing.T, srv *server.Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func multipartFile(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// ─── /api/scan ─────────────────────────────────────────────────────────

func TestHandleScan(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	req := httptest.NewRequest("GET", "/api/scan?input=https://example.com", nil)
	rec := doRequest(t, env.srv, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var res model.ScanResult
	decodeJSON(t, rec, &res)
	if !res.IsSafe || res.SafetyScore != 100 {
		t.Errorf("isSafe=%v score=%d", res.IsSafe, res.SafetyScore)
	}
	if res.InputType != "url" {
		t.Errorf("inputType = %q", res.InputType)
	}
	if res.GeminiInsights != "report text" {
		t.Errorf("geminiInsights = %q", res.GeminiInsights)
	}
	if res.RecordID == nil || *res.RecordID == "" {
		t.Error("recordId should be set after persistence")
	}
	if len(env.rep.Lookups) != 1 || env.rep.Lookups[0] != "URL:https://example.com" {
		t.Errorf("lookups = %v", env.rep.Lookups)
	}
}

func TestHandleScan_MissingInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := doRequest(t, env.srv, httptest.NewRequest("GET", "/api/scan", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp server.ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Error != "Input is required" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestHandleScan_InvalidInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := doRequest(t, env.srv, httptest.NewRequest("GET", "/api/scan?input=%21%21%21", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp server.ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Error != "Invalid input type. Please provide a valid URL, domain, hash, or IP address." {
		t.Errorf("error = %q", resp.Error)
	}
	if len(env.rep.Lookups) != 0 {
		t.Error("invalid input must not reach the reputation client")
	}
}

func TestHandleScan_LookupFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.rep.LookupErr = errors.New("provider down")

	rec := doRequest(t, env.srv, httptest.NewRequest("GET", "/api/scan?input=example.com", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Error          string         `json:"error"`
		IsSafe         bool           `json:"isSafe"`
		SafetyScore    int            `json:"safetyScore"`
		VTStats        map[string]any `json:"vtStats"`
		GeminiInsights string         `json:"geminiInsights"`
		InputType      string         `json:"inputType"`
	}
	decodeJSON(t, rec, &resp)

	if !strings.HasPrefix(resp.Error, "Scan failed:") {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.IsSafe || resp.SafetyScore != 0 {
		t.Errorf("failure payload must zero the score, got isSafe=%v score=%d", resp.IsSafe, resp.SafetyScore)
	}
	if len(resp.VTStats) != 0 {
		t.Errorf("vtStats = %v, want empty object", resp.VTStats)
	}
	if resp.GeminiInsights != "Analysis unavailable due to server error" {
		t.Errorf("geminiInsights = %q", resp.GeminiInsights)
	}
	if resp.InputType != "url" {
		t.Errorf("inputType = %q, want kind echoed from classification", resp.InputType)
	}
}

// ─── /api/scan-file ────────────────────────────────────────────────────

func TestHandleScanFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body, contentType := multipartFile(t, "file", "sample.bin", []byte("content"))
	req := httptest.NewRequest("POST", "/api/scan-file", body)
	req.Header.Set("Content-Type", contentType)

	rec := doRequest(t, env.srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var res model.ScanResult
	decodeJSON(t, rec, &res)
	if !res.IsSafe || res.SafetyScore != 100 {
		t.Errorf("isSafe=%v score=%d", res.IsSafe, res.SafetyScore)
	}
	if res.InputType != "file" {
		t.Errorf("inputType = %q", res.InputType)
	}
	if len(env.rep.Files) != 1 || env.rep.Files[0] != "sample.bin" {
		t.Errorf("files = %v", env.rep.Files)
	}
}

func TestHandleScanFile_MissingFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/scan-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := doRequest(t, env.srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp server.ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Error != "Valid file is required" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestHandleScanFile_EmptyFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body, contentType := multipartFile(t, "file", "empty.bin", nil)
	req := httptest.NewRequest("POST", "/api/scan-file", body)
	req.Header.Set("Content-Type", contentType)

	rec := doRequest(t, env.srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleScanFile_Pending(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.rep.FileAnalysis = &reputation.FileAnalysis{AnalysisID: "analysis-slow"}

	body, contentType := multipartFile(t, "file", "slow.bin", []byte("content"))
	req := httptest.NewRequest("POST", "/api/scan-file", body)
	req.Header.Set("Content-Type", contentType)

	rec := doRequest(t, env.srv, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp server.PendingScanResponse
	decodeJSON(t, rec, &resp)
	if resp.Message != "File scan queued, analysis still in progress after 90 seconds" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.AnalysisID != "analysis-slow" {
		t.Errorf("analysisId = %q", resp.AnalysisID)
	}
	if resp.IsSafe != nil || resp.SafetyScore != nil {
		t.Error("pending payload must null the score fields")
	}
	if resp.GeminiInsights != "Analysis pending" {
		t.Errorf("geminiInsights = %q", resp.GeminiInsights)
	}
}

func TestHandleScanFile_SubmitFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.rep.SubmitErr = errors.New("upload rejected")

	body, contentType := multipartFile(t, "file", "bad.bin", []byte("content"))
	req := httptest.NewRequest("POST", "/api/scan-file", body)
	req.Header.Set("Content-Type", contentType)

	rec := doRequest(t, env.srv, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Error     string `json:"error"`
		InputType string `json:"inputType"`
	}
	decodeJSON(t, rec, &resp)
	if !strings.HasPrefix(resp.Error, "File scan failed:") {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.InputType != "file" {
		t.Errorf("inputType = %q", resp.InputType)
	}
}

// ─── /api/insights ─────────────────────────────────────────────────────

func TestHandleInsights(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	// Empty store serves [] with 200, never null.
	rec := doRequest(t, env.srv, httptest.NewRequest("GET", "/api/insights", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}

	// A completed scan shows up in the history.
	doRequest(t, env.srv, httptest.NewRequest("GET", "/api/scan?input=https://example.com", nil))
	rec = doRequest(t, env.srv, httptest.NewRequest("GET", "/api/insights", nil))

	var insights []model.Insight
	decodeJSON(t, rec, &insights)
	if len(insights) != 1 {
		t.Fatalf("len = %d, want 1", len(insights))
	}
	if insights[0].Input != "https://example.com" {
		t.Errorf("input = %q", insights[0].Input)
	}
	if insights[0].Type != "URL" {
		t.Errorf("type = %q", insights[0].Type)
	}
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestCORSHeaders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := doRequest(t, env.srv, httptest.NewRequest("GET", "/api/insights", nil))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := doRequest(t, env.srv, httptest.NewRequest("OPTIONS", "/api/scan-file", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
}

// ─── /ws/live ──────────────────────────────────────────────────────────

func TestLiveWebSocket(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ts := httptest.NewServer(env.srv)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()
}
