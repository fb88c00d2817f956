// Package escalate contains the escalation state machine and the coordinator
// that drives it: signal buffer → classifier → session → countdown, with side
// effects emitted as events rather than performed in-process.
package escalate

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ridepulse-app/crashguard/internal/classify"
)

// State is the lifecycle state of an escalation session.
type State string

const (
	// StateIdle is the initial state; no candidate crash is being tracked.
	StateIdle State = "idle"
	// StateCandidateDetected means an assessment crossed the trigger
	// threshold but the corroboration window has not yet elapsed.
	StateCandidateDetected State = "candidate_detected"
	// StateCountdownActive means the cancellable countdown is running
	// against an absolute wall-clock deadline.
	StateCountdownActive State = "countdown_active"
	// StateCancelled is terminal: the rider confirmed safety.
	StateCancelled State = "cancelled"
	// StateEscalated is terminal: the countdown expired without
	// confirmation and the escalate event was emitted.
	StateEscalated State = "escalated"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateEscalated
}

// ResolutionReason records how a session reached a terminal state.
type ResolutionReason string

const (
	ReasonUserConfirmedSafe ResolutionReason = "user_confirmed_safe"
	ReasonEscalated         ResolutionReason = "escalated"
)

// Session tracks one candidate-crash lifecycle from detection to terminal
// resolution. All mutation happens inside the coordinator's transition lock;
// once a terminal state is reached the session is never modified again. A new
// candidate after a terminal state starts a new session with a new ID.
type Session struct {
	// ID is globally unique per session so escalation collaborators can
	// deduplicate deliveries across restarts.
	ID string

	State State

	// Triggering is the assessment that opened the session. Present from
	// CandidateDetected onward and immutable.
	Triggering *classify.Assessment

	// CandidateAt is when the session left Idle.
	CandidateAt time.Time

	// CountdownDeadline is the absolute wall-clock instant at which the
	// session escalates absent confirmation. Zero until CountdownActive.
	CountdownDeadline time.Time

	// PeakProbability is the highest probability seen across the session,
	// including assessments arriving during the countdown. Recording it
	// never restarts the clock.
	PeakProbability float64

	// ResolvedAt and Resolution are set exactly once, on the transition
	// into a terminal state.
	ResolvedAt time.Time
	Resolution ResolutionReason
}

func newSession(a *classify.Assessment, now time.Time) *Session {
	return &Session{
		ID:              fmt.Sprintf("ses_%s", uuid.NewString()),
		State:           StateCandidateDetected,
		Triggering:      a,
		CandidateAt:     now,
		PeakProbability: a.Probability,
	}
}

// View returns a read-only copy for collaborators and the UI layer.
func (s *Session) View() *SessionView {
	v := &SessionView{
		ID:                s.ID,
		State:             s.State,
		Probability:       s.Triggering.Probability,
		Kind:              s.Triggering.Kind,
		PeakProbability:   s.PeakProbability,
		CandidateAt:       s.CandidateAt,
		CountdownDeadline: s.CountdownDeadline,
		ResolvedAt:        s.ResolvedAt,
		Resolution:        s.Resolution,
	}
	return v
}

// SessionView is a read-only projection of a session. Safe to retain; it
// shares no state with the live session.
type SessionView struct {
	ID                string           `json:"id"`
	State             State            `json:"state"`
	Kind              classify.Kind    `json:"kind"`
	Probability       float64          `json:"probability"`
	PeakProbability   float64          `json:"peak_probability"`
	CandidateAt       time.Time        `json:"candidate_at"`
	CountdownDeadline time.Time        `json:"countdown_deadline,omitzero"`
	ResolvedAt        time.Time        `json:"resolved_at,omitzero"`
	Resolution        ResolutionReason `json:"resolution,omitempty"`
}
