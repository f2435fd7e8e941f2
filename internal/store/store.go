// Package store persists scan results in SQLite. Writes are append-only:
// one insert per completed scan, no updates or deletes. Verdict stats and
// metadata are stored as JSON columns, mirroring how the history view
// consumes them.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/guardscan/internal/classifier"
	"github.com/raysh454/guardscan/internal/logging"
	"github.com/raysh454/guardscan/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrStoreUnavailable is returned when a read against the store fails.
// No partial results are synthesized.
var ErrStoreUnavailable = errors.New("insights store unavailable")

type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// NewStore returns a Store and runs migrations from schema.sql.
func NewStore(db *sql.DB, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// InsertScan records a completed text-input scan and returns the assigned
// record id.
func (s *Store) InsertScan(ctx context.Context, input string, kind classifier.Kind, res *model.ScanResult) (string, error) {
	stats, fullData, err := marshalVerdict(res)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	now := time.Now().UnixNano()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scan_insights
             (id, input, type, is_safe, safety_score, vt_stats, vt_full_data, gemini_insights, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, input, string(kind), boolToInt(res.IsSafe), res.SafetyScore, stats, fullData, res.GeminiInsights, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert scan insight: %w", err)
	}
	return id, nil
}

// InsertFileScan records a completed file scan, keyed by filename.
func (s *Store) InsertFileScan(ctx context.Context, filename string, res *model.ScanResult) (string, error) {
	stats, fullData, err := marshalVerdict(res)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	now := time.Now().UnixNano()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO file_insights
             (id, filename, is_safe, safety_score, vt_stats, vt_full_data, gemini_insights, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, filename, boolToInt(res.IsSafe), res.SafetyScore, stats, fullData, res.GeminiInsights, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert file insight: %w", err)
	}
	return id, nil
}

// ListInsights returns all stored text-input scans, newest first.
func (s *Store) ListInsights(ctx context.Context) ([]model.Insight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, type, is_safe, safety_score, vt_stats, vt_full_data, gemini_insights, created_at
         FROM scan_insights
         ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := []model.Insight{}
	for rows.Next() {
		var (
			in        model.Insight
			isSafe    int
			stats     string
			fullData  string
			createdAt int64
		)
		if err := rows.Scan(&in.ID, &in.Input, &in.Type, &isSafe, &in.SafetyScore, &stats, &fullData, &in.GeminiInsights, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		in.IsSafe = isSafe != 0
		in.CreatedAt = time.Unix(0, createdAt).UTC()

		if err := json.Unmarshal([]byte(stats), &in.VTStats); err != nil {
			s.logger.Warn("corrupt vt_stats column, serving zeroed stats",
				logging.Field{Key: "id", Value: in.ID},
				logging.Field{Key: "error", Value: err.Error()})
		}
		if err := json.Unmarshal([]byte(fullData), &in.VTFullData); err != nil {
			s.logger.Warn("corrupt vt_full_data column, serving empty metadata",
				logging.Field{Key: "id", Value: in.ID},
				logging.Field{Key: "error", Value: err.Error()})
		}

		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func marshalVerdict(res *model.ScanResult) (stats, fullData string, err error) {
	sb, err := json.Marshal(res.VTStats)
	if err != nil {
		return "", "", fmt.Errorf("marshal vt stats: %w", err)
	}
	fb, err := json.Marshal(res.VTFullData)
	if err != nil {
		return "", "", fmt.Errorf("marshal vt full data: %w", err)
	}
	return string(sb), string(fb), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
