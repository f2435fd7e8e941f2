package reputation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/raysh454/guardscan/internal/classifier"
	"github.com/raysh454/guardscan/internal/logging"
	"github.com/raysh454/guardscan/internal/webclient"
)

// VTClient implements Client against the VirusTotal v3 API.
type VTClient struct {
	cfg    Config
	wc     webclient.WebClient
	logger logging.Logger
}

// NewVTClient wires a VTClient over the given transport. Zero-value poll
// policies are replaced with the defaults.
func NewVTClient(cfg Config, wc webclient.WebClient, logger logging.Logger) *VTClient {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.URLPoll.MaxAttempts == 0 {
		cfg.URLPoll = def.URLPoll
	}
	if cfg.FilePoll.MaxAttempts == 0 {
		cfg.FilePoll = def.FilePoll
	}
	if cfg.URLPoll.IsTerminal == nil {
		cfg.URLPoll.IsTerminal = statusCompleted
	}
	if cfg.FilePoll.IsTerminal == nil {
		cfg.FilePoll.IsTerminal = statusCompleted
	}

	return &VTClient{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "reputation"}),
	}
}

// Lookup resolves verdict counts for a classified input. Hashes, domains and
// IPs are single synchronous lookups; URLs fall back to submit-then-poll when
// no record exists yet.
func (c *VTClient) Lookup(ctx context.Context, kind classifier.Kind, value string) (*Verdict, error) {
	switch kind {
	case classifier.KindURL:
		return c.lookupURL(ctx, value)
	case classifier.KindHash:
		return c.fetchObject(ctx, "/files/"+value)
	case classifier.KindDomain:
		return c.fetchObject(ctx, "/domains/"+value)
	case classifier.KindIP:
		return c.fetchObject(ctx, "/ip_addresses/"+value)
	}
	return nil, fmt.Errorf("%w: no lookup endpoint for kind %q", ErrReputationUnavailable, kind)
}

// urlRecordID derives the provider's URL-safe record identifier: the
// URL-encoded input, base64-encoded, with padding stripped.
func urlRecordID(raw string) string {
	encoded := url.QueryEscape(raw)
	return strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(encoded)), "=")
}

func (c *VTClient) lookupURL(ctx context.Context, raw string) (*Verdict, error) {
	verdict, err := c.fetchObject(ctx, "/urls/"+urlRecordID(raw))
	if err == nil {
		return verdict, nil
	}

	// No existing record; submit for fresh analysis and poll.
	c.logger.Info("url record lookup failed, submitting for analysis",
		logging.Field{Key: "url", Value: raw},
		logging.Field{Key: "error", Value: err.Error()})

	analysisID, err := c.submitURL(ctx, raw)
	if err != nil {
		return nil, err
	}

	verdict, completed, err := c.pollAnalysis(ctx, analysisID, c.cfg.URLPoll)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, fmt.Errorf("%w: analysis %s", ErrAnalysisTimeout, analysisID)
	}
	return verdict, nil
}

// SubmitFile uploads file content and polls for the verdict. Poll exhaustion
// is reported as an incomplete FileAnalysis carrying the handle, not as an
// error.
func (c *VTClient) SubmitFile(ctx context.Context, filename string, content []byte) (*FileAnalysis, error) {
	analysisID, err := c.submitFile(ctx, filename, content)
	if err != nil {
		return nil, err
	}
	c.logger.Info("file submitted for analysis",
		logging.Field{Key: "filename", Value: filename},
		logging.Field{Key: "analysis_id", Value: analysisID})

	verdict, completed, err := c.pollAnalysis(ctx, analysisID, c.cfg.FilePoll)
	if err != nil {
		return nil, err
	}
	if !completed {
		c.logger.Warn("file analysis still pending after poll budget",
			logging.Field{Key: "analysis_id", Value: analysisID})
		return &FileAnalysis{AnalysisID: analysisID}, nil
	}
	return &FileAnalysis{AnalysisID: analysisID, Completed: true, Verdict: verdict}, nil
}

// fetchObject performs a single existing-record GET. Any failure, including
// a missing record, is fatal for the request.
func (c *VTClient) fetchObject(ctx context.Context, path string) (*Verdict, error) {
	env, err := c.do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     c.cfg.BaseURL + path,
		Headers: c.headers(""),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReputationUnavailable, err)
	}
	return &Verdict{
		Stats: env.Data.Attributes.LastAnalysisStats,
		Meta:  env.Data.Attributes.meta(),
	}, nil
}

func (c *VTClient) submitURL(ctx context.Context, raw string) (string, error) {
	body := "url=" + url.QueryEscape(raw)
	env, err := c.do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.cfg.BaseURL + "/urls",
		Headers: c.headers("application/x-www-form-urlencoded"),
		Body:    []byte(body),
	})
	if err != nil {
		return "", fmt.Errorf("%w: submit url: %v", ErrReputationUnavailable, err)
	}
	return env.Data.ID, nil
}

func (c *VTClient) submitFile(ctx context.Context, filename string, content []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("write multipart content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart form: %w", err)
	}

	env, err := c.do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.cfg.BaseURL + "/files",
		Headers: c.headers(mw.FormDataContentType()),
		Body:    buf.Bytes(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: submit file: %v", ErrReputationUnavailable, err)
	}
	return env.Data.ID, nil
}

// pollAnalysis polls the analysis-status endpoint under the given policy.
// Returns completed=false when the budget runs out.
func (c *VTClient) pollAnalysis(ctx context.Context, analysisID string, policy PollPolicy) (*Verdict, bool, error) {
	var verdict *Verdict

	attempt := 0
	completed, err := policy.Run(ctx, func(ctx context.Context) (string, error) {
		attempt++
		env, err := c.do(ctx, &webclient.Request{
			Method:  http.MethodGet,
			URL:     c.cfg.BaseURL + "/analyses/" + analysisID,
			Headers: c.headers(""),
		})
		if err != nil {
			return "", fmt.Errorf("%w: poll analysis: %v", ErrReputationUnavailable, err)
		}

		status := env.Data.Attributes.Status
		c.logger.Debug("analysis poll attempt",
			logging.Field{Key: "analysis_id", Value: analysisID},
			logging.Field{Key: "attempt", Value: attempt},
			logging.Field{Key: "status", Value: status})

		if statusCompleted(status) {
			verdict = &Verdict{
				Stats: env.Data.Attributes.Stats,
				Meta:  env.Data.Attributes.meta(),
			}
		}
		return status, nil
	})
	if err != nil {
		return nil, false, err
	}
	return verdict, completed, nil
}

func (c *VTClient) headers(contentType string) http.Header {
	h := http.Header{}
	h.Set("x-apikey", c.cfg.APIKey)
	h.Set("Accept", "application/json")
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return h
}

// do executes a request and decodes the provider envelope. Non-2xx statuses
// are errors: the provider reports missing records as 404.
func (c *VTClient) do(ctx context.Context, req *webclient.Request) (*vtEnvelope, error) {
	resp, err := c.wc.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var env vtEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	return &env, nil
}
