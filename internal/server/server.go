package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/guardscan/internal/app"
	"github.com/raysh454/guardscan/internal/classifier"
	"github.com/raysh454/guardscan/internal/genai"
	"github.com/raysh454/guardscan/internal/logging"
	"github.com/raysh454/guardscan/internal/report"
	"github.com/raysh454/guardscan/internal/reputation"
	"github.com/raysh454/guardscan/internal/store"
	"github.com/raysh454/guardscan/internal/webclient"

	_ "github.com/raysh454/guardscan/docs/swagger" // OpenAPI document registration
	_ "modernc.org/sqlite"                         // SQLite driver
)

// maxUploadBytes caps file uploads at 50MB.
const maxUploadBytes = 50 << 20

// Server is the HTTP + WebSocket API surface for guardscan.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
	insightsDB   *sql.DB
	transport    webclient.WebClient
}

// NewServer creates a new Server with its own Orchestrator.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	// Make sure storage root exists
	storageRoot, err := expandPath(cfg.AppConfig.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("expanding storage root path: %w", err)
	}
	cfg.AppConfig.StorageRoot = storageRoot
	if err := os.MkdirAll(cfg.AppConfig.StorageRoot, 0755); err != nil {
		logger.Warn("creating storage root directory",
			logging.Field{Key: "path", Value: cfg.AppConfig.StorageRoot},
			logging.Field{Key: "error", Value: err.Error()})
	}

	// Set up insights DB
	db, err := sql.Open("sqlite", filepath.Join(cfg.AppConfig.StorageRoot, "guardscan.db"))
	if err != nil {
		return nil, fmt.Errorf("opening insights database: %w", err)
	}

	st, err := store.NewStore(db, logger)
	if err != nil {
		return nil, fmt.Errorf("creating insights store: %w", err)
	}

	transport := webclient.NewNetHTTPClient(logger, nil)

	rep := cfg.Reputation
	if rep == nil {
		rep = reputation.NewVTClient(cfg.AppConfig.Reputation, transport, logger)
	}

	gen := cfg.Generator
	if gen == nil {
		gen = genai.NewGeminiClient(cfg.AppConfig.GenAI, transport, logger)
	}

	orch := app.NewOrchestrator(cfg.AppConfig, rep, report.NewGenerator(gen, logger), st, logger)

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       r,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
		insightsDB: db,
		transport:  transport,
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/scan", s.optionsHandler("GET"))
	r.Options("/api/scan-file", s.optionsHandler("POST"))
	r.Options("/api/insights", s.optionsHandler("GET"))

	// Scans
	r.Get("/api/scan", s.handleScan)
	r.Post("/api/scan-file", s.handleScanFile)

	// History
	r.Get("/api/insights", s.handleInsights)

	// Live channel (connection lifecycle only; scans carry no live events)
	r.Get("/ws/live", s.handleLiveWS)

	// API docs
	r.Get("/swagger/*", httpSwagger.Handler())
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the server's underlying resources.
func (s *Server) Close() {
	if s.insightsDB != nil {
		s.insightsDB.Close()
	}
	if s.transport != nil {
		s.transport.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:        s.cfg.ListenAddr,
		Handler:     s,
		ReadTimeout: 15 * time.Second,
		// No write timeout: file analysis polling can hold a response
		// open for up to 90 seconds.
		WriteTimeout: 0,
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "" {
		writeError(w, http.StatusBadRequest, "Input is required")
		return
	}

	// The pipeline runs on a background context: poll loops must run to
	// completion even if the caller disconnects mid-scan.
	res, err := s.orchestrator.ScanInput(context.Background(), input)
	if err != nil {
		if errors.Is(err, classifier.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "Invalid input type. Please provide a valid URL, domain, hash, or IP address.")
			return
		}

		s.logger.Warn("scan failed", logging.Field{Key: "error", Value: err.Error()})
		inputType := ""
		var scanErr *app.ScanError
		if errors.As(err, &scanErr) {
			inputType = scanErr.Kind.Lower()
		}
		writeJSON(w, http.StatusInternalServerError, ScanFailureResponse{
			Error:          fmt.Sprintf("Scan failed: %v", err),
			VTStats:        map[string]any{},
			VTFullData:     map[string]any{},
			GeminiInsights: "Analysis unavailable due to server error",
			InputType:      inputType,
		})
		return
	}

	s.logger.Info("scan completed",
		logging.Field{Key: "input", Value: input},
		logging.Field{Key: "input_type", Value: res.InputType},
		logging.Field{Key: "safety_score", Value: res.SafetyScore})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleScanFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Valid file is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valid file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil || len(content) == 0 {
		writeError(w, http.StatusBadRequest, "Valid file is required")
		return
	}

	s.logger.Info("file scan request",
		logging.Field{Key: "filename", Value: header.Filename},
		logging.Field{Key: "size", Value: len(content)})

	outcome, err := s.orchestrator.ScanFile(context.Background(), header.Filename, content)
	if err != nil {
		s.logger.Warn("file scan failed", logging.Field{Key: "error", Value: err.Error()})
		writeJSON(w, http.StatusInternalServerError, ScanFailureResponse{
			Error:          fmt.Sprintf("File scan failed: %v", err),
			VTStats:        map[string]any{},
			VTFullData:     map[string]any{},
			GeminiInsights: "Analysis unavailable due to server error",
			InputType:      "file",
		})
		return
	}

	if outcome.Pending {
		writeJSON(w, http.StatusAccepted, PendingScanResponse{
			Message:        "File scan queued, analysis still in progress after 90 seconds",
			AnalysisID:     outcome.AnalysisID,
			GeminiInsights: "Analysis pending",
			InputType:      "file",
		})
		return
	}

	writeJSON(w, http.StatusOK, outcome.Result)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.orchestrator.Insights(r.Context())
	if err != nil {
		s.logger.Warn("fetching insights", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch insights: %v", err))
		return
	}
	s.logger.Info("listed insights", logging.Field{Key: "count", Value: len(insights)})
	writeJSON(w, http.StatusOK, insights)
}

// handleLiveWS upgrades to a WebSocket that currently carries no
// scan-specific events; the connection exists for clients that want a live
// channel, and its lifecycle is logged.
func (s *Server) handleLiveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	s.logger.Info("client connected", logging.Field{Key: "remote", Value: remote})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.logger.Info("client disconnected", logging.Field{Key: "remote", Value: remote})
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
