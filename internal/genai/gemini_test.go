package genai_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raysh454/guardscan/internal/genai"
	"github.com/raysh454/guardscan/internal/testutil"
	"github.com/raysh454/guardscan/internal/webclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *genai.GeminiClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := &testutil.DummyLogger{}
	cfg := genai.Config{Endpoint: srv.URL, APIKey: "test-key", Model: "gemini-1.5-flash"}
	return genai.NewGeminiClient(cfg, webclient.NewNetHTTPClient(logger, srv.Client()), logger)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotBody []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"generated insight"}]}}]}`)
	})

	text, err := client.Generate(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "generated insight" {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("x-goog-api-key = %q", gotKey)
	}

	var req struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 || req.Contents[0].Parts[0].Text != "analyze this" {
		t.Errorf("request body = %s", gotBody)
	}
}

func TestGenerate_NoAPIKey(t *testing.T) {
	t.Parallel()

	logger := &testutil.DummyLogger{}
	client := genai.NewGeminiClient(genai.Config{}, &testutil.DummyWebClient{}, logger)

	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, genai.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Generate(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Errorf("err = %v, want status 429", err)
	}
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	})

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error for empty candidate list")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := genai.DefaultConfig()
	if cfg.Endpoint != "https://generativelanguage.googleapis.com/v1beta" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Model != "gemini-1.5-flash" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.APIKey != "" {
		t.Error("default APIKey should be empty")
	}
}
