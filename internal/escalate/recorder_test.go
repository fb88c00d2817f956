package escalate

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridepulse-app/crashguard/internal/motion"
	"github.com/ridepulse-app/crashguard/internal/timeutil"
)

type fakeRecorder struct {
	mu       sync.Mutex
	sessions []SessionView
	events   []string
	fail     bool
}

func (f *fakeRecorder) RecordSession(v SessionView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("journal unavailable")
	}
	f.sessions = append(f.sessions, v)
	return nil
}

func (f *fakeRecorder) RecordEvent(sessionID, eventType string, at time.Time, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("journal unavailable")
	}
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeRecorder) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func TestCoordinatorJournalsTransitions(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	classifier := &scriptedClassifier{}
	buffer := motion.NewBuffer(10*time.Second, 150*time.Millisecond)
	recorder := &fakeRecorder{}
	c := NewCoordinator(testConfig, clock, buffer, classifier, WithRecorder(recorder))

	classifier.set(assessmentAt(0.8, clock.Now()))
	c.Tick()
	clock.Advance(2 * time.Second)
	classifier.set(assessmentAt(0.8, clock.Now()))
	c.Tick()
	classifier.set(nil)
	clock.Advance(45 * time.Second)
	c.Tick()

	assert.Equal(t, []string{"candidate_detected", "countdown_started", "escalated"}, recorder.eventTypes())

	recorder.mu.Lock()
	require.NotEmpty(t, recorder.sessions)
	final := recorder.sessions[len(recorder.sessions)-1]
	recorder.mu.Unlock()
	assert.Equal(t, StateEscalated, final.State)
	assert.Equal(t, ReasonEscalated, final.Resolution)
}

func TestCoordinatorJournalsRetraction(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	classifier := &scriptedClassifier{}
	buffer := motion.NewBuffer(10*time.Second, 150*time.Millisecond)
	recorder := &fakeRecorder{}
	c := NewCoordinator(testConfig, clock, buffer, classifier, WithRecorder(recorder))

	classifier.set(assessmentAt(0.8, clock.Now()))
	c.Tick()
	clock.Advance(time.Second)
	classifier.set(assessmentAt(0.3, clock.Now()))
	c.Tick()

	assert.Equal(t, []string{"candidate_detected", "candidate_retracted"}, recorder.eventTypes())
}

// A failing journal must never interfere with the state machine.
func TestRecorderFailureDoesNotBlockTransitions(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	classifier := &scriptedClassifier{}
	buffer := motion.NewBuffer(10*time.Second, 150*time.Millisecond)
	recorder := &fakeRecorder{fail: true}
	c := NewCoordinator(testConfig, clock, buffer, classifier, WithRecorder(recorder))

	classifier.set(assessmentAt(0.8, clock.Now()))
	c.Tick()
	session := c.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, StateCandidateDetected, session.State)
}
