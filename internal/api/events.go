package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ridepulse-app/crashguard/internal/escalate"
	"github.com/ridepulse-app/crashguard/internal/monitoring"
)

// countdownTickPeriod is how often the SSE stream reports remaining countdown
// time. Display only: the authoritative expiry decision lives in the
// coordinator and compares wall clock to the absolute deadline.
const countdownTickPeriod = time.Second

// countdownTick is the periodic countdown payload sent while a session is in
// CountdownActive.
type countdownTick struct {
	SessionID        string  `json:"session_id"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// handleEvents streams escalation events and countdown ticks as server-sent
// events until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, events := s.coordinator.Subscribe()
	defer s.coordinator.Unsubscribe(id)

	ticker := s.clock.NewTicker(countdownTickPeriod)
	defer ticker.Stop()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(w, string(e.Type), e); err != nil {
				monitoring.Logf("sse write failed, closing stream: %v", err)
				return
			}
			flusher.Flush()
		case <-ticker.C():
			session := s.coordinator.CurrentSession()
			if session == nil || session.State != escalate.StateCountdownActive {
				continue
			}
			tick := countdownTick{
				SessionID:        session.ID,
				RemainingSeconds: s.clock.Until(session.CountdownDeadline).Seconds(),
			}
			if err := writeSSE(w, "countdown_tick", tick); err != nil {
				monitoring.Logf("sse write failed, closing stream: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
