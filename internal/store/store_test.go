package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/raysh454/guardscan/internal/classifier"
	"github.com/raysh454/guardscan/internal/model"
	"github.com/raysh454/guardscan/internal/store"
	"github.com/raysh454/guardscan/internal/testutil"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := store.NewStore(db, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func scanResult(safe bool, score int) *model.ScanResult {
	rep := 10
	return &model.ScanResult{
		IsSafe:      safe,
		SafetyScore: score,
		VTStats:     model.VerdictStats{Harmless: 80, Undetected: 15, Malicious: 3, Suspicious: 2},
		VTFullData: model.VerdictMeta{
			Reputation:  &rep,
			ThreatNames: []string{"Trojan.Test"},
			Categories:  map[string]string{"vendor": "malware"},
		},
		GeminiInsights: "report text",
		InputType:      "url",
	}
}

func TestInsertScanAndList(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	firstID, err := s.InsertScan(ctx, "https://first.example", classifier.KindURL, scanResult(true, 95))
	if err != nil {
		t.Fatalf("InsertScan: %v", err)
	}
	secondID, err := s.InsertScan(ctx, "https://second.example", classifier.KindURL, scanResult(false, 40))
	if err != nil {
		t.Fatalf("InsertScan: %v", err)
	}
	if firstID == "" || firstID == secondID {
		t.Fatalf("ids must be unique and non-empty, got %q, %q", firstID, secondID)
	}

	insights, err := s.ListInsights(ctx)
	if err != nil {
		t.Fatalf("ListInsights: %v", err)
	}
	if len(insights) != 2 {
		t.Fatalf("len = %d, want 2", len(insights))
	}

	// Newest first.
	if insights[0].Input != "https://second.example" {
		t.Errorf("insights[0].Input = %q, want the most recent scan", insights[0].Input)
	}
	if insights[1].Input != "https://first.example" {
		t.Errorf("insights[1].Input = %q", insights[1].Input)
	}

	got := insights[0]
	if got.ID != secondID {
		t.Errorf("ID = %q, want %q", got.ID, secondID)
	}
	if got.Type != "URL" {
		t.Errorf("Type = %q", got.Type)
	}
	if got.IsSafe {
		t.Error("IsSafe should be false")
	}
	if got.SafetyScore != 40 {
		t.Errorf("SafetyScore = %d", got.SafetyScore)
	}
	if got.GeminiInsights != "report text" {
		t.Errorf("GeminiInsights = %q", got.GeminiInsights)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestListInsights_VerdictRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertScan(ctx, "example.com", classifier.KindDomain, scanResult(true, 90)); err != nil {
		t.Fatalf("InsertScan: %v", err)
	}

	insights, err := s.ListInsights(ctx)
	if err != nil {
		t.Fatalf("ListInsights: %v", err)
	}
	got := insights[0]

	if got.VTStats.Harmless != 80 || got.VTStats.Malicious != 3 {
		t.Errorf("VTStats = %+v", got.VTStats)
	}
	if got.VTFullData.Reputation == nil || *got.VTFullData.Reputation != 10 {
		t.Errorf("Reputation = %v", got.VTFullData.Reputation)
	}
	if len(got.VTFullData.ThreatNames) != 1 || got.VTFullData.ThreatNames[0] != "Trojan.Test" {
		t.Errorf("ThreatNames = %v", got.VTFullData.ThreatNames)
	}
	if got.VTFullData.Categories["vendor"] != "malware" {
		t.Errorf("Categories = %v", got.VTFullData.Categories)
	}
}

func TestListInsights_Empty(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	insights, err := s.ListInsights(context.Background())
	if err != nil {
		t.Fatalf("ListInsights: %v", err)
	}
	if insights == nil {
		t.Fatal("expected an initialized empty slice, got nil")
	}
	if len(insights) != 0 {
		t.Errorf("len = %d, want 0", len(insights))
	}
}

func TestInsertFileScan(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.InsertFileScan(ctx, "sample.bin", scanResult(true, 100))
	if err != nil {
		t.Fatalf("InsertFileScan: %v", err)
	}
	if id == "" {
		t.Error("expected a record id")
	}

	// File scans live in their own table and never surface in the
	// text-scan history.
	insights, err := s.ListInsights(ctx)
	if err != nil {
		t.Fatalf("ListInsights: %v", err)
	}
	if len(insights) != 0 {
		t.Errorf("file scan leaked into scan insights: %+v", insights)
	}
}
