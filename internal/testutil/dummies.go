// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raysh454/guardscan/internal/classifier"
	"github.com/raysh454/guardscan/internal/logging"
	"github.com/raysh454/guardscan/internal/model"
	"github.com/raysh454/guardscan/internal/reputation"
	"github.com/raysh454/guardscan/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient. Responses are served from
// the Responses map keyed by "METHOD url"; unmatched requests return 404.
type DummyWebClient struct {
	Responses map[string]*webclient.Response
	FailURLs  map[string]bool

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	if d.Responses != nil {
		if resp, ok := d.Responses[req.Method+" "+req.URL]; ok {
			return resp, nil
		}
	}
	return &webclient.Response{
		Request:    req,
		StatusCode: 404,
		Body:       []byte(`{"error":"not found"}`),
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Close() error { return nil }

// ─── Reputation ────────────────────────────────────────────────────────

// DummyReputationClient implements reputation.Client with preconfigured
// outcomes and call recording.
type DummyReputationClient struct {
	Verdict      *reputation.Verdict
	LookupErr    error
	FileAnalysis *reputation.FileAnalysis
	SubmitErr    error

	mu      sync.Mutex
	Lookups []string
	Files   []string
}

func (d *DummyReputationClient) Lookup(_ context.Context, kind classifier.Kind, value string) (*reputation.Verdict, error) {
	d.mu.Lock()
	d.Lookups = append(d.Lookups, string(kind)+":"+value)
	d.mu.Unlock()
	if d.LookupErr != nil {
		return nil, d.LookupErr
	}
	if d.Verdict != nil {
		return d.Verdict, nil
	}
	return &reputation.Verdict{
		Stats: model.VerdictStats{Harmless: 70, Undetected: 30},
		Meta:  model.VerdictMeta{ThreatNames: []string{}, Categories: map[string]string{}},
	}, nil
}

func (d *DummyReputationClient) SubmitFile(_ context.Context, filename string, _ []byte) (*reputation.FileAnalysis, error) {
	d.mu.Lock()
	d.Files = append(d.Files, filename)
	d.mu.Unlock()
	if d.SubmitErr != nil {
		return nil, d.SubmitErr
	}
	if d.FileAnalysis != nil {
		return d.FileAnalysis, nil
	}
	return &reputation.FileAnalysis{
		AnalysisID: "analysis-dummy",
		Completed:  true,
		Verdict: &reputation.Verdict{
			Stats: model.VerdictStats{Harmless: 60, Undetected: 40},
			Meta:  model.VerdictMeta{ThreatNames: []string{}, Categories: map[string]string{}},
		},
	}, nil
}

// ─── Generator ─────────────────────────────────────────────────────────

// DummyGenerator implements genai.Generator and records prompts. Empty forces
// a "" result with nil error, distinct from the zero value's canned text.
type DummyGenerator struct {
	Text  string
	Empty bool
	Err   error

	mu      sync.Mutex
	Prompts []string
}

func (d *DummyGenerator) Generate(_ context.Context, prompt string) (string, error) {
	d.mu.Lock()
	d.Prompts = append(d.Prompts, prompt)
	d.mu.Unlock()
	if d.Err != nil {
		return "", d.Err
	}
	if d.Empty {
		return "", nil
	}
	if d.Text != "" {
		return d.Text, nil
	}
	return "dummy report", nil
}

// LastPrompt returns the most recent recorded prompt, or "".
func (d *DummyGenerator) LastPrompt() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Prompts) == 0 {
		return ""
	}
	return d.Prompts[len(d.Prompts)-1]
}

// ─── Store ─────────────────────────────────────────────────────────────

// DummyStore implements app.ScanStore with in-memory recording.
type DummyStore struct {
	InsertErr error
	ListErr   error
	Insights  []model.Insight

	mu        sync.Mutex
	Scans     []string
	FileScans []string
	nextID    int
}

func (d *DummyStore) InsertScan(_ context.Context, input string, _ classifier.Kind, _ *model.ScanResult) (string, error) {
	if d.InsertErr != nil {
		return "", d.InsertErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Scans = append(d.Scans, input)
	d.nextID++
	return fmt.Sprintf("record-%d", d.nextID), nil
}

func (d *DummyStore) InsertFileScan(_ context.Context, filename string, _ *model.ScanResult) (string, error) {
	if d.InsertErr != nil {
		return "", d.InsertErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.FileScans = append(d.FileScans, filename)
	d.nextID++
	return fmt.Sprintf("record-%d", d.nextID), nil
}

func (d *DummyStore) ListInsights(_ context.Context) ([]model.Insight, error) {
	if d.ListErr != nil {
		return nil, d.ListErr
	}
	return append([]model.Insight{}, d.Insights...), nil
}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
