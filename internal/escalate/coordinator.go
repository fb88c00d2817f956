package escalate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ridepulse-app/crashguard/internal/classify"
	"github.com/ridepulse-app/crashguard/internal/config"
	"github.com/ridepulse-app/crashguard/internal/monitoring"
	"github.com/ridepulse-app/crashguard/internal/motion"
	"github.com/ridepulse-app/crashguard/internal/timeutil"
)

// Config holds the coordinator's escalation parameters.
type Config struct {
	// TriggerThreshold is the assessment probability at or above which a
	// candidate session opens.
	TriggerThreshold float64
	// RetractionThreshold is the probability at or below which a candidate
	// is discarded before corroboration completes.
	RetractionThreshold float64
	// CorroborationWindow is the delay between candidate detection and
	// countdown start. Zero starts the countdown in the same tick.
	CorroborationWindow time.Duration
	// CountdownDuration is how long the rider has to confirm safety.
	CountdownDuration time.Duration
	// EvalCadence bounds how often classification runs.
	EvalCadence time.Duration
}

// ConfigFromTuning builds a coordinator Config from a loaded tuning file.
func ConfigFromTuning(t *config.TuningConfig) Config {
	return Config{
		TriggerThreshold:    t.GetTriggerThreshold(),
		RetractionThreshold: t.GetRetractionThreshold(),
		CorroborationWindow: t.GetCorroborationWindow(),
		CountdownDuration:   t.GetCountdownDuration(),
		EvalCadence:         t.GetEvalCadence(),
	}
}

// Recorder persists session transitions for post-ride review. Implementations
// must tolerate being called from the evaluation loop; failures are logged by
// the coordinator and never affect session state.
type Recorder interface {
	RecordSession(v SessionView) error
	RecordEvent(sessionID string, eventType string, at time.Time, detail string) error
}

// Coordinator orchestrates buffer → classifier → session → countdown and owns
// the single live session. Transitions are the only critical section: one
// mutex guards them against the UI-driven ConfirmSafe. Side effects leave the
// coordinator as Events; it performs no I/O of its own.
type Coordinator struct {
	cfg        Config
	clock      timeutil.Clock
	buffer     *motion.Buffer
	classifier classify.Classifier
	recorder   Recorder

	mu           sync.Mutex
	live         *Session
	last         *Session // most recent session, terminal states included
	lastEval     time.Time
	lastLocation *motion.Location

	// confirmPending makes a confirmation that raced a tick visible to that
	// tick before its expiry check runs: a rider who tapped "I'm okay" in
	// the same instant the timer fired must never be escalated.
	confirmPending atomic.Bool

	subMu       sync.Mutex
	subscribers map[string]chan Event
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithRecorder attaches a session journal.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// NewCoordinator wires the engine together. The caller owns the buffer and
// must not hand it to anything else; the coordinator is its single writer.
func NewCoordinator(cfg Config, clock timeutil.Clock, buffer *motion.Buffer, classifier classify.Classifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:         cfg,
		clock:       clock,
		buffer:      buffer,
		classifier:  classifier,
		subscribers: make(map[string]chan Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitSample forwards a sample to the signal buffer and runs an evaluation
// tick if the configured cadence has elapsed, bounding classification cost
// regardless of sample rate.
func (c *Coordinator) SubmitSample(s motion.MotionSample) {
	c.buffer.Push(s)

	c.mu.Lock()
	defer c.mu.Unlock()
	if s.Location != nil {
		c.lastLocation = s.Location
	}
	now := c.clock.Now()
	if c.lastEval.IsZero() || now.Sub(c.lastEval) >= c.cfg.EvalCadence {
		c.evaluateLocked(now)
	}
}

// ConfirmSafe cancels the live session if one is in CandidateDetected or
// CountdownActive. Confirming safety when nothing is wrong is a harmless
// no-op, not an error. May be called concurrently with the evaluation loop.
func (c *Coordinator) ConfirmSafe() {
	c.confirmPending.Store(true)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyConfirmLocked(c.clock.Now())
}

// Tick runs one evaluation cycle immediately. Run calls this on the
// configured cadence; tests drive it directly.
func (c *Coordinator) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evaluateLocked(c.clock.Now())
}

// Resume re-checks the countdown deadline immediately after the process
// returns from suspension. A deadline that passed while suspended escalates
// now rather than being silently lost; a pending confirmation still wins.
func (c *Coordinator) Resume() {
	c.Tick()
}

// Run drives the evaluation loop until ctx is cancelled. This loop is the
// single writer of the live session; it keeps countdowns moving even when
// samples stop arriving, which is exactly what happens after a real crash.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.cfg.EvalCadence)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			c.Tick()
		}
	}
}

// CurrentSession returns a read-only view of the live session, or nil when no
// session is live.
func (c *Coordinator) CurrentSession() *SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		return nil
	}
	return c.live.View()
}

// LastSession returns a view of the most recent session including terminal
// ones, or nil if no session has ever opened. The status aggregator uses this
// to hold Emergency after escalation.
func (c *Coordinator) LastSession() *SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	return c.last.View()
}

// Subscribe creates a channel receiving side-effect events. The returned ID
// identifies the channel for Unsubscribe. Slow subscribers drop events rather
// than stall transitions; the escalation collaborator must drain promptly.
func (c *Coordinator) Subscribe() (string, chan Event) {
	id := randomID()
	ch := make(chan Event, 16)
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a subscriber channel.
func (c *Coordinator) Unsubscribe(id string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if ch, ok := c.subscribers[id]; ok {
		close(ch)
		delete(c.subscribers, id)
	}
}

// evaluateLocked runs one evaluation tick. Caller holds c.mu.
//
// Order matters: a pending confirmation is applied before the expiry check so
// a confirm and an expiry observed in the same tick resolve to Cancelled, and
// the expiry check runs before classification so a stalled sample stream
// cannot postpone escalation.
func (c *Coordinator) evaluateLocked(now time.Time) {
	c.lastEval = now

	if c.confirmPending.Load() {
		c.applyConfirmLocked(now)
	}

	if c.live != nil && c.live.State == StateCountdownActive {
		cd := NewCountdown(c.clock, c.live.CountdownDeadline)
		if cd.Expired() {
			c.escalateLocked(now)
		}
	}

	assessment := c.runClassifier(now)

	switch {
	case c.live == nil:
		if assessment != nil && assessment.Probability >= c.cfg.TriggerThreshold {
			// A new session needs evidence newer than the previous
			// session's resolution; otherwise the same spike still
			// sitting in the window would reopen a session the moment
			// the prior one resolved.
			if c.last != nil && c.last.State.Terminal() && !assessment.ProducedAt.After(c.last.ResolvedAt) {
				return
			}
			c.openSessionLocked(assessment, now)
		}

	case c.live.State == StateCandidateDetected:
		if assessment != nil && assessment.Probability <= c.cfg.RetractionThreshold {
			c.retractLocked(now)
			return
		}
		if assessment != nil && assessment.Probability > c.live.PeakProbability {
			c.live.PeakProbability = assessment.Probability
		}
		if now.Sub(c.live.CandidateAt) >= c.cfg.CorroborationWindow {
			c.startCountdownLocked(now)
		}

	case c.live.State == StateCountdownActive:
		// Severity is recorded but the deadline is never reset: repeated
		// tremors must not extend the countdown indefinitely.
		if assessment != nil && assessment.Probability > c.live.PeakProbability {
			c.live.PeakProbability = assessment.Probability
		}
	}
}

// runClassifier evaluates the current window snapshot. Classifier errors,
// invalid output, and panics all collapse to "no assessment this tick". A
// transient scoring failure must never crash the loop or suppress future
// detections.
func (c *Coordinator) runClassifier(now time.Time) (a *classify.Assessment) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.Logf("classifier panic treated as no assessment: %v", r)
			a = nil
		}
	}()

	a, err := c.classifier.Evaluate(c.buffer.Snapshot())
	if err != nil {
		monitoring.Logf("classifier error treated as no assessment: %v", err)
		return nil
	}
	if a != nil && (a.Probability < 0 || a.Probability > 1) {
		monitoring.Logf("classifier produced out-of-range probability %f, ignoring", a.Probability)
		return nil
	}
	return a
}

// openSessionLocked starts a new session. Exactly one live session exists at
// a time; callers only reach here when c.live is nil.
func (c *Coordinator) openSessionLocked(a *classify.Assessment, now time.Time) {
	c.live = newSession(a, now)
	c.last = c.live
	c.record(now, "candidate_detected", "")

	if c.cfg.CorroborationWindow <= 0 {
		c.startCountdownLocked(now)
	}
}

func (c *Coordinator) startCountdownLocked(now time.Time) {
	c.live.State = StateCountdownActive
	c.live.CountdownDeadline = now.Add(c.cfg.CountdownDuration)
	c.record(now, "countdown_started", "")
	c.emit(Event{
		Type:      EventCountdownStarted,
		SessionID: c.live.ID,
		EmittedAt: now,
		Deadline:  c.live.CountdownDeadline,
	})
}

// retractLocked discards a candidate that dropped back below the retraction
// threshold before corroboration completed. No side effect; the next
// candidate opens a fresh session.
func (c *Coordinator) retractLocked(now time.Time) {
	c.live.State = StateIdle
	c.record(now, "candidate_retracted", "")
	c.live = nil
}

// applyConfirmLocked resolves a pending confirmation. Cancels the live
// session when it is CandidateDetected or CountdownActive, even if the
// deadline has already passed, because confirmation is evaluated first in
// every tick. No-op otherwise.
func (c *Coordinator) applyConfirmLocked(now time.Time) {
	c.confirmPending.Store(false)
	if c.live == nil || c.live.State.Terminal() {
		return
	}
	if c.live.State != StateCandidateDetected && c.live.State != StateCountdownActive {
		return
	}

	c.live.State = StateCancelled
	c.live.ResolvedAt = now
	c.live.Resolution = ReasonUserConfirmedSafe
	c.record(now, "cancelled", "")
	c.emit(Event{
		Type:      EventCancelled,
		SessionID: c.live.ID,
		EmittedAt: now,
	})
	c.live = nil
}

// escalateLocked takes the single-fire Escalated transition. The state is
// compared against CountdownActive immediately before the transition, so
// duplicate timer ticks and re-entrant evaluation cannot emit a second
// Escalate event for the session.
func (c *Coordinator) escalateLocked(now time.Time) {
	if c.live == nil || c.live.State != StateCountdownActive {
		return
	}

	c.live.State = StateEscalated
	c.live.ResolvedAt = now
	c.live.Resolution = ReasonEscalated
	c.record(now, "escalated", "")
	c.emit(Event{
		Type:       EventEscalate,
		SessionID:  c.live.ID,
		EmittedAt:  now,
		Location:   c.lastLocation,
		Assessment: c.live.Triggering,
	})
	c.live = nil
}

func (c *Coordinator) record(now time.Time, eventType, detail string) {
	if c.recorder == nil {
		return
	}
	session := c.live
	if session == nil {
		return
	}
	if err := c.recorder.RecordSession(*session.View()); err != nil {
		monitoring.Logf("failed to journal session %s: %v", session.ID, err)
	}
	if err := c.recorder.RecordEvent(session.ID, eventType, now, detail); err != nil {
		monitoring.Logf("failed to journal event %s for %s: %v", eventType, session.ID, err)
	}
}

// emit delivers an event to all subscribers in transition order. Sends never
// block: a full subscriber channel drops the event and logs, since transition
// latency is safety-critical and delivery retries belong to collaborators.
func (c *Coordinator) emit(e Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for id, ch := range c.subscribers {
		select {
		case ch <- e:
		default:
			monitoring.Logf("subscriber %s lagging, dropped %s event", id, e.Type)
		}
	}
}
