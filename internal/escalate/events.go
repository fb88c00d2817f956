package escalate

import (
	crand "crypto/rand"
	"encoding/hex"
	"time"

	"github.com/ridepulse-app/crashguard/internal/classify"
	"github.com/ridepulse-app/crashguard/internal/motion"
)

// EventType identifies a side-effect request emitted by the coordinator.
type EventType string

const (
	// EventCountdownStarted asks the UI collaborator to show the countdown.
	EventCountdownStarted EventType = "countdown_started"
	// EventCancelled asks collaborators to clear any countdown display.
	EventCancelled EventType = "cancelled"
	// EventEscalate asks the notification collaborator to contact emergency
	// services/contacts. Emitted at most once per session; collaborators
	// deduplicate on SessionID as defence in depth.
	EventEscalate EventType = "escalate"
)

// Event is a side-effect request. The coordinator never performs I/O itself;
// collaborators subscribe and act on these. Events are emitted in the order
// the corresponding transitions occur.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	EmittedAt time.Time `json:"emitted_at"`

	// Deadline accompanies EventCountdownStarted.
	Deadline time.Time `json:"deadline,omitzero"`

	// Location and Assessment accompany EventEscalate. Location is the last
	// known fix at emission time and may be nil if none was ever observed.
	Location   *motion.Location     `json:"location,omitempty"`
	Assessment *classify.Assessment `json:"assessment,omitempty"`
}

// randomID generates a random subscriber ID (8 byte random hex encoded value).
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}
