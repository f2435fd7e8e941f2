// Package genai provides the generative-text capability used for scan
// reports. The only production implementation targets the Gemini REST API;
// report generation treats the capability as fallible and always has a
// deterministic fallback, so implementations may fail freely.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/raysh454/guardscan/internal/logging"
	"github.com/raysh454/guardscan/internal/webclient"
)

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned when no API key is set. Report generation
// downgrades it to the fallback template like any other failure.
var ErrNotConfigured = errors.New("generative api key is not configured")

// Config holds Gemini client configuration.
type Config struct {
	// Endpoint is the API root (default: the public generativelanguage host).
	Endpoint string

	// APIKey authenticates requests; empty means the capability is absent.
	APIKey string

	// Model selects the generation model.
	Model string
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint: "https://generativelanguage.googleapis.com/v1beta",
		Model:    "gemini-1.5-flash",
	}
}

// GeminiClient implements Generator over the shared webclient transport.
type GeminiClient struct {
	cfg    Config
	wc     webclient.WebClient
	logger logging.Logger
}

func NewGeminiClient(cfg Config, wc webclient.WebClient, logger logging.Logger) *GeminiClient {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}

	return &GeminiClient{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "genai"}),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate submits the prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.cfg.Endpoint + "/models/" + c.cfg.Model + ":generateContent",
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("generate content: status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generate content: empty response")
	}

	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errors.New("generate content: empty candidate text")
	}
	return text, nil
}
