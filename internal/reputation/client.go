// Package reputation talks to the external threat-intelligence provider and
// turns its responses into verdict counts plus auxiliary metadata. Existing
// records are looked up synchronously; URLs and files fall back to the
// provider's asynchronous submit-then-poll analysis protocol.
package reputation

import (
	"context"
	"errors"

	"github.com/raysh454/guardscan/internal/classifier"
	"github.com/raysh454/guardscan/internal/model"
)

var (
	// ErrReputationUnavailable covers any lookup failure that is fatal for
	// the request, including "no record exists" for hashes, domains and IPs.
	ErrReputationUnavailable = errors.New("reputation lookup failed")

	// ErrAnalysisTimeout is returned when URL analysis polling exhausts its
	// attempt budget without the provider reporting completion.
	ErrAnalysisTimeout = errors.New("analysis did not complete in time")
)

// Verdict is the provider's answer for one input.
type Verdict struct {
	Stats model.VerdictStats
	Meta  model.VerdictMeta
}

// FileAnalysis is the outcome of a file submission. Polling exhaustion is a
// valid terminal state for files, not an error: the caller gets the analysis
// handle back and may poll the provider again later.
type FileAnalysis struct {
	AnalysisID string
	Completed  bool

	// Verdict is set only when Completed is true.
	Verdict *Verdict
}

// Client is the reputation capability consumed by the orchestrator.
type Client interface {
	// Lookup resolves verdict counts for a classified text input.
	Lookup(ctx context.Context, kind classifier.Kind, value string) (*Verdict, error)

	// SubmitFile uploads file content for fresh analysis and polls until the
	// verdict is ready or the attempt budget runs out.
	SubmitFile(ctx context.Context, filename string, content []byte) (*FileAnalysis, error)
}
