// Package api exposes the engine to collaborators over HTTP: sample ingest,
// safety confirmation, lifecycle signals, status/session reads, and a
// server-sent-events stream of escalation events.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ridepulse-app/crashguard/internal/escalate"
	"github.com/ridepulse-app/crashguard/internal/journal"
	"github.com/ridepulse-app/crashguard/internal/monitoring"
	"github.com/ridepulse-app/crashguard/internal/motion"
	"github.com/ridepulse-app/crashguard/internal/status"
	"github.com/ridepulse-app/crashguard/internal/timeutil"
)

// Server wires HTTP handlers to the coordinator, status aggregator, and the
// optional session journal.
type Server struct {
	coordinator *escalate.Coordinator
	aggregator  *status.Aggregator
	journal     *journal.Journal
	clock       timeutil.Clock
}

// NewServer creates a Server. journal may be nil when journaling is disabled.
func NewServer(c *escalate.Coordinator, a *status.Aggregator, j *journal.Journal, clock timeutil.Clock) *Server {
	return &Server{
		coordinator: c,
		aggregator:  a,
		journal:     j,
		clock:       clock,
	}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/samples", s.handleSamples)
	mux.HandleFunc("/api/confirm-safe", s.handleConfirmSafe)
	mux.HandleFunc("/api/resume", s.handleResume)
	mux.HandleFunc("/api/riding", s.handleRiding)
	mux.HandleFunc("/api/acknowledge", s.handleAcknowledge)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/sessions/recent", s.handleRecentSessions)
	mux.HandleFunc("/api/events", s.handleEvents)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode response: %v", err)
	}
}

// handleSamples ingests one motion sample per POST body. Collaborators that
// batch should POST once per sample; the coordinator's cadence gate keeps
// classification cost bounded either way.
func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var sample motion.MotionSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		http.Error(w, "invalid sample payload", http.StatusBadRequest)
		return
	}
	s.coordinator.SubmitSample(sample)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleConfirmSafe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// No-op when nothing is live; confirming safety is always harmless.
	s.coordinator.ConfirmSafe()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.coordinator.Resume()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRiding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Riding bool `json:"riding"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid riding payload", http.StatusBadRequest)
		return
	}
	s.aggregator.SetRiding(body.Riding)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.aggregator.Acknowledge()
	w.WriteHeader(http.StatusOK)
}

// statusResponse is the polled safety status payload.
type statusResponse struct {
	Level   status.Level          `json:"level"`
	Riding  bool                  `json:"riding"`
	Session *escalate.SessionView `json:"session,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Level:   s.aggregator.Status(),
		Riding:  s.aggregator.Riding(),
		Session: s.coordinator.CurrentSession(),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session := s.coordinator.CurrentSession()
	if session == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleRecentSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.journal == nil {
		http.Error(w, "journal not configured", http.StatusNotFound)
		return
	}
	records, err := s.journal.RecentSessions(20)
	if err != nil {
		http.Error(w, "failed to read journal", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}
