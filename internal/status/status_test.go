package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ridepulse-app/crashguard/internal/escalate"
)

// fakeSource hands out whatever views the test assigns.
type fakeSource struct {
	current *escalate.SessionView
	last    *escalate.SessionView
}

func (f *fakeSource) CurrentSession() *escalate.SessionView { return f.current }
func (f *fakeSource) LastSession() *escalate.SessionView    { return f.last }

func view(id string, state escalate.State) *escalate.SessionView {
	return &escalate.SessionView{
		ID:          id,
		State:       state,
		CandidateAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestStatusProjection(t *testing.T) {
	t.Parallel()

	t.Run("safe with no sessions", func(t *testing.T) {
		t.Parallel()
		a := NewAggregator(&fakeSource{})
		assert.Equal(t, LevelSafe, a.Status())
	})

	t.Run("warning while a candidate is live", func(t *testing.T) {
		t.Parallel()
		a := NewAggregator(&fakeSource{current: view("ses_1", escalate.StateCandidateDetected)})
		assert.Equal(t, LevelWarning, a.Status())
	})

	t.Run("crash detected while the countdown runs", func(t *testing.T) {
		t.Parallel()
		a := NewAggregator(&fakeSource{current: view("ses_1", escalate.StateCountdownActive)})
		assert.Equal(t, LevelCrashDetected, a.Status())
	})

	t.Run("safe after a cancelled session", func(t *testing.T) {
		t.Parallel()
		a := NewAggregator(&fakeSource{last: view("ses_1", escalate.StateCancelled)})
		assert.Equal(t, LevelSafe, a.Status())
	})

	t.Run("riding flag alone never raises the level", func(t *testing.T) {
		t.Parallel()
		a := NewAggregator(&fakeSource{})
		a.SetRiding(true)
		assert.True(t, a.Riding())
		assert.Equal(t, LevelSafe, a.Status())
	})
}

func TestEmergencyLatch(t *testing.T) {
	t.Parallel()

	t.Run("latches after escalation until acknowledged", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{last: view("ses_1", escalate.StateEscalated)}
		a := NewAggregator(src)

		assert.Equal(t, LevelEmergency, a.Status())
		// Repeated polls stay latched; no session is live anymore.
		assert.Equal(t, LevelEmergency, a.Status())

		a.Acknowledge()
		assert.Equal(t, LevelSafe, a.Status())
	})

	t.Run("acknowledge is a no-op without an escalated session", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{last: view("ses_1", escalate.StateCancelled)}
		a := NewAggregator(src)
		a.Acknowledge()
		assert.Equal(t, LevelSafe, a.Status())
	})

	t.Run("a new escalation latches again after acknowledgement", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{last: view("ses_1", escalate.StateEscalated)}
		a := NewAggregator(src)
		a.Acknowledge()
		assert.Equal(t, LevelSafe, a.Status())

		src.last = view("ses_2", escalate.StateEscalated)
		assert.Equal(t, LevelEmergency, a.Status())
	})

	t.Run("a new candidate outranks the latch display", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{
			current: view("ses_2", escalate.StateCandidateDetected),
			last:    view("ses_1", escalate.StateEscalated),
		}
		a := NewAggregator(src)
		assert.Equal(t, LevelWarning, a.Status())
	})
}
