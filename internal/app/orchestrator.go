// Package app sequences the scan pipeline: classify, look up reputation,
// score, generate the report, persist, respond. Capabilities are injected at
// construction so tests can substitute fakes for every external collaborator.
package app

import (
	"context"
	"fmt"

	"github.com/raysh454/guardscan/internal/classifier"
	"github.com/raysh454/guardscan/internal/logging"
	"github.com/raysh454/guardscan/internal/model"
	"github.com/raysh454/guardscan/internal/report"
	"github.com/raysh454/guardscan/internal/reputation"
)

// ScanStore is the persistence capability the orchestrator writes to.
// Implemented by store.Store.
type ScanStore interface {
	InsertScan(ctx context.Context, input string, kind classifier.Kind, res *model.ScanResult) (string, error)
	InsertFileScan(ctx context.Context, filename string, res *model.ScanResult) (string, error)
	ListInsights(ctx context.Context) ([]model.Insight, error)
}

// ScanError is a pipeline failure that occurred after classification
// succeeded. It carries the classified kind so the API layer can echo the
// inputType field in its failure payload.
type ScanError struct {
	Kind classifier.Kind
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan failed for %s: %v", e.Kind.Lower(), e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// FileScanOutcome is the result of a file scan. Pending means the provider's
// analysis did not complete within the poll budget; the caller gets the
// analysis handle and may retry later. Pending outcomes are not persisted.
type FileScanOutcome struct {
	Pending    bool
	AnalysisID string
	Result     *model.ScanResult
}

type Orchestrator struct {
	cfg     *Config
	rep     reputation.Client
	reports *report.Generator
	store   ScanStore
	logger  logging.Logger
}

// NewOrchestrator ties together config, capabilities and logger.
func NewOrchestrator(cfg *Config, rep reputation.Client, reports *report.Generator, store ScanStore, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		cfg:     cfg,
		rep:     rep,
		reports: reports,
		store:   store,
		logger:  logger,
	}
}

// ScanInput runs the full pipeline for a text input. Classification failure
// returns classifier.ErrInvalidInput; a reputation failure returns a
// *ScanError. Persistence failure never fails the scan: the result comes back
// with a nil RecordID.
func (o *Orchestrator) ScanInput(ctx context.Context, raw string) (*model.ScanResult, error) {
	kind, err := classifier.Classify(raw)
	if err != nil {
		return nil, err
	}
	o.logger.Info("scan request classified",
		logging.Field{Key: "input", Value: raw},
		logging.Field{Key: "kind", Value: string(kind)})

	verdict, err := o.rep.Lookup(ctx, kind, raw)
	if err != nil {
		return nil, &ScanError{Kind: kind, Err: err}
	}

	res := o.buildResult(ctx, kind, raw, verdict)

	if id, err := o.store.InsertScan(ctx, raw, kind, res); err != nil {
		o.logger.Warn("persisting scan result failed, proceeding without record id",
			logging.Field{Key: "input", Value: raw},
			logging.Field{Key: "error", Value: err.Error()})
	} else {
		res.RecordID = &id
	}
	return res, nil
}

// ScanFile submits uploaded content for analysis. When the provider's poll
// budget runs out the outcome is pending, carrying the analysis handle; that
// is a valid terminal state, not an error.
func (o *Orchestrator) ScanFile(ctx context.Context, filename string, content []byte) (*FileScanOutcome, error) {
	analysis, err := o.rep.SubmitFile(ctx, filename, content)
	if err != nil {
		return nil, &ScanError{Kind: classifier.KindFile, Err: err}
	}

	if !analysis.Completed {
		return &FileScanOutcome{Pending: true, AnalysisID: analysis.AnalysisID}, nil
	}

	res := o.buildResult(ctx, classifier.KindFile, filename, analysis.Verdict)

	if id, err := o.store.InsertFileScan(ctx, filename, res); err != nil {
		o.logger.Warn("persisting file scan result failed, proceeding without record id",
			logging.Field{Key: "filename", Value: filename},
			logging.Field{Key: "error", Value: err.Error()})
	} else {
		res.RecordID = &id
	}
	return &FileScanOutcome{AnalysisID: analysis.AnalysisID, Result: res}, nil
}

// Insights returns all stored text scans, newest first.
func (o *Orchestrator) Insights(ctx context.Context) ([]model.Insight, error) {
	return o.store.ListInsights(ctx)
}

// buildResult derives the score and report from a verdict. Scoring is pure;
// report generation never fails outward.
func (o *Orchestrator) buildResult(ctx context.Context, kind classifier.Kind, input string, verdict *reputation.Verdict) *model.ScanResult {
	isSafe, score := model.Safety(verdict.Stats)
	rep := o.reports.Generate(ctx, kind, input, verdict.Stats, verdict.Meta)

	return &model.ScanResult{
		IsSafe:         isSafe,
		SafetyScore:    score,
		VTStats:        verdict.Stats,
		VTFullData:     verdict.Meta,
		GeminiInsights: rep.RawText,
		InputType:      kind.Lower(),
	}
}
