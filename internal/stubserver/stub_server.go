// Package stubserver is a local stand-in for the reputation and generative
// providers, for demos and manual end-to-end testing without API keys.
// Existing-record lookups for URLs always miss, which forces the client
// through the full submit-then-poll protocol.
package stubserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

type StubServer struct {
	cfg Config
	mux *http.ServeMux

	mu       sync.Mutex
	analyses map[string]int // analysis id -> polls seen
	nextID   int
}

func NewStubServer(cfg Config) *StubServer {
	s := &StubServer{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		analyses: make(map[string]int),
	}
	s.routes()
	return s
}

func (s *StubServer) routes() {
	// Reputation provider surface
	s.mux.HandleFunc("GET /api/v3/urls/", s.handleURLMiss)
	s.mux.HandleFunc("POST /api/v3/urls", s.handleSubmit)
	s.mux.HandleFunc("POST /api/v3/files", s.handleSubmit)
	s.mux.HandleFunc("GET /api/v3/files/", s.handleRecord)
	s.mux.HandleFunc("GET /api/v3/domains/", s.handleRecord)
	s.mux.HandleFunc("GET /api/v3/ip_addresses/", s.handleRecord)
	s.mux.HandleFunc("GET /api/v3/analyses/", s.handleAnalysis)

	// Generative provider surface
	s.mux.HandleFunc("POST /v1beta/models/", s.handleGenerate)
}

func (s *StubServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	return http.ListenAndServe(addr, s.mux)
}

func (s *StubServer) Handler() http.Handler { return s.mux }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleURLMiss reports every URL record as unknown so clients exercise the
// analysis fallback.
func (s *StubServer) handleURLMiss(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error": map[string]string{"code": "NotFoundError"},
	})
}

func (s *StubServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("stub-analysis-%d", s.nextID)
	s.analyses[id] = 0
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"id": id},
	})
}

func (s *StubServer) handleRecord(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"id": strings.TrimPrefix(r.URL.Path, "/api/v3/"),
			"attributes": map[string]any{
				"last_analysis_stats": map[string]int{
					"harmless":   68,
					"undetected": 25,
					"malicious":  0,
					"suspicious": 1,
					"timeout":    0,
				},
				"reputation":   42,
				"threat_names": []string{},
				"categories":   map[string]string{"stub": "benign"},
			},
		},
	})
}

func (s *StubServer) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v3/analyses/")

	s.mu.Lock()
	polls, known := s.analyses[id]
	if known {
		s.analyses[id] = polls + 1
	}
	s.mu.Unlock()

	if !known {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]string{"code": "NotFoundError"},
		})
		return
	}

	status := "queued"
	attrs := map[string]any{"status": status}
	if polls >= s.cfg.CompleteAfter {
		attrs = map[string]any{
			"status": "completed",
			"stats": map[string]int{
				"harmless":   60,
				"undetected": 35,
				"malicious":  0,
				"suspicious": 0,
				"timeout":    0,
			},
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"id": id, "attributes": attrs},
	})
}

func (s *StubServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]string{
						{"text": "**Stub Cybersecurity Report**\n- **Threats & Vulnerabilities:** No specific threats detected.\n- **Reputation:** Stubbed.\n- **Context:** Local demo.\n- **Safety Tips:** Use HTTPS.\n- **JSON Pie Chart:** {\"Safe\": 95, \"Malicious\": 0, \"Suspicious\": 5}"},
					},
				},
			},
		},
	})
}
