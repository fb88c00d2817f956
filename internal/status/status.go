// Package status derives the coarse safety status shown by the UI layer. It
// is a pure projection of (riding flag, escalation session state) with a
// single piece of bookkeeping: Emergency latches after an escalation until
// the external ride-ended/acknowledged signal clears it.
package status

import (
	"sync"

	"github.com/ridepulse-app/crashguard/internal/escalate"
)

// Level is the coarse safety status consumed by status-display UI.
type Level string

const (
	LevelSafe          Level = "safe"
	LevelWarning       Level = "warning"
	LevelCrashDetected Level = "crash_detected"
	LevelEmergency     Level = "emergency"
)

// SessionSource exposes the session views the projection needs. The
// escalation coordinator satisfies it.
type SessionSource interface {
	CurrentSession() *escalate.SessionView
	LastSession() *escalate.SessionView
}

// Aggregator combines coordinator state with the externally supplied
// ride-activity flag. Safe to poll from any goroutine.
type Aggregator struct {
	mu              sync.Mutex
	source          SessionSource
	riding          bool
	acknowledgedIDs map[string]bool
}

// NewAggregator creates an aggregator over the given session source.
func NewAggregator(source SessionSource) *Aggregator {
	return &Aggregator{
		source:          source,
		acknowledgedIDs: make(map[string]bool),
	}
}

// SetRiding records the externally supplied ride-activity flag.
func (a *Aggregator) SetRiding(riding bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.riding = riding
}

// Riding reports the current ride-activity flag.
func (a *Aggregator) Riding() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.riding
}

// Acknowledge clears the Emergency latch for the most recent escalated
// session. This is the "ride ended/acknowledged" signal from outside the
// engine; it never touches session state, which is immutable once terminal.
func (a *Aggregator) Acknowledge() {
	a.mu.Lock()
	defer a.mu.Unlock()
	last := a.source.LastSession()
	if last != nil && last.State == escalate.StateEscalated {
		a.acknowledgedIDs[last.ID] = true
	}
}

// Status computes the current level.
func (a *Aggregator) Status() Level {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cur := a.source.CurrentSession(); cur != nil {
		switch cur.State {
		case escalate.StateCandidateDetected:
			return LevelWarning
		case escalate.StateCountdownActive:
			return LevelCrashDetected
		}
	}

	if last := a.source.LastSession(); last != nil &&
		last.State == escalate.StateEscalated && !a.acknowledgedIDs[last.ID] {
		return LevelEmergency
	}

	return LevelSafe
}
