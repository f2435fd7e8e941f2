package server

import "github.com/raysh454/guardscan/internal/model"

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"Input is required"`
}

// ScanFailureResponse is the 500 payload when the pipeline fails after
// classification. Stats are served as empty objects, not zeroed counts.
type ScanFailureResponse struct {
	Error          string         `json:"error" example:"Scan failed: reputation lookup failed"`
	IsSafe         bool           `json:"isSafe"`
	SafetyScore    int            `json:"safetyScore"`
	VTStats        map[string]any `json:"vtStats"`
	VTFullData     map[string]any `json:"vtFullData"`
	GeminiInsights string         `json:"geminiInsights" example:"Analysis unavailable due to server error"`
	InputType      string         `json:"inputType" example:"url"`
}

// PendingScanResponse is the 202 payload for a file analysis that outlived
// the poll budget. Score fields are explicitly null; the analysis handle lets
// the caller poll the provider again later.
type PendingScanResponse struct {
	Message        string              `json:"message"`
	AnalysisID     string              `json:"analysisId"`
	IsSafe         *bool               `json:"isSafe"`
	SafetyScore    *int                `json:"safetyScore"`
	VTStats        *model.VerdictStats `json:"vtStats"`
	VTFullData     *model.VerdictMeta  `json:"vtFullData"`
	GeminiInsights string              `json:"geminiInsights" example:"Analysis pending"`
	InputType      string              `json:"inputType" example:"file"`
}
