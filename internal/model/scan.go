package model

import "time"

// ScanResult is the durable outcome of one scan. It is built in memory by
// the orchestrator, written once to the store (best effort), and returned to
// the caller. Field names follow the public API contract verbatim.
type ScanResult struct {
	IsSafe      bool         `json:"isSafe"`
	SafetyScore int          `json:"safetyScore"`
	VTStats     VerdictStats `json:"vtStats"`
	VTFullData  VerdictMeta  `json:"vtFullData"`

	// GeminiInsights is the free-text report, possibly containing an
	// embedded JSON fragment. Consumers parse section markers out of it;
	// the server treats it as opaque.
	GeminiInsights string `json:"geminiInsights"`

	// InputType is the lowercased kind string ("url", "hash", "domain",
	// "ip address", "file").
	InputType string `json:"inputType"`

	// RecordID is assigned at persistence time; nil when the store insert
	// failed (persistence failures never abort a scan).
	RecordID *string `json:"recordId"`
}

// Insight is one stored scan row as served by the history endpoint.
// Column naming is snake_case to match the stored record.
type Insight struct {
	ID             string       `json:"id"`
	Input          string       `json:"input"`
	Type           string       `json:"type"`
	IsSafe         bool         `json:"is_safe"`
	SafetyScore    int          `json:"safety_score"`
	VTStats        VerdictStats `json:"vt_stats"`
	VTFullData     VerdictMeta  `json:"vt_full_data"`
	GeminiInsights string       `json:"gemini_insights"`
	CreatedAt      time.Time    `json:"created_at"`
}
