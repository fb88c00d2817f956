package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	d := clock.Since(past)

	if d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestRealClock_Until(t *testing.T) {
	clock := RealClock{}
	future := time.Now().Add(time.Hour)
	d := clock.Until(future)

	if d < 59*time.Minute {
		t.Errorf("Until() returned %v, expected >= 59m", d)
	}
}

func TestRealClock_NewTicker(t *testing.T) {
	clock := RealClock{}
	ticker := clock.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
		// Ticker fired as expected
	case <-time.After(100 * time.Millisecond):
		t.Error("ticker did not fire")
	}
}

func TestMockClock_Now(t *testing.T) {
	fixedTime := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := NewMockClock(fixedTime)
	now := clock.Now()

	if !now.Equal(fixedTime) {
		t.Errorf("got %v, want %v", now, fixedTime)
	}
}

func TestMockClock_Set(t *testing.T) {
	clock := NewMockClock(time.Time{})
	newTime := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	clock.Set(newTime)

	if !clock.Now().Equal(newTime) {
		t.Errorf("got %v, want %v", clock.Now(), newTime)
	}
}

func TestMockClock_Advance(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	clock.Advance(90 * time.Minute)

	want := start.Add(90 * time.Minute)
	if !clock.Now().Equal(want) {
		t.Errorf("got %v, want %v", clock.Now(), want)
	}
}

func TestMockClock_SinceUntil(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if got := clock.Since(start.Add(-time.Minute)); got != time.Minute {
		t.Errorf("Since() = %v, want 1m", got)
	}
	if got := clock.Until(start.Add(time.Minute)); got != time.Minute {
		t.Errorf("Until() = %v, want 1m", got)
	}
	if got := clock.Until(start.Add(-time.Minute)); got != -time.Minute {
		t.Errorf("Until() past deadline = %v, want -1m", got)
	}
}

func TestMockClock_After(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	ch := clock.After(time.Minute)

	select {
	case <-ch:
		t.Fatal("fired before the clock advanced")
	default:
	}

	clock.Advance(time.Minute)
	select {
	case fired := <-ch:
		if fired.Before(start.Add(time.Minute)) {
			t.Errorf("fired at %v, want >= %v", fired, start.Add(time.Minute))
		}
	default:
		t.Fatal("did not fire after the clock advanced")
	}
}

func TestMockClock_AdvancePastDeadlineFiresOnce(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	ch := clock.After(time.Minute)

	// A single large jump (e.g. suspension) still fires exactly once.
	clock.Advance(time.Hour)
	clock.Advance(time.Hour)

	if len(ch) != 1 {
		t.Errorf("timer fired %d times, want 1", len(ch))
	}
}

func TestMockClock_Ticker(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	ticker := clock.NewTicker(time.Second)
	defer ticker.Stop()

	select {
	case <-ticker.C():
		t.Fatal("ticked before the clock advanced")
	default:
	}

	clock.Advance(time.Second)
	select {
	case <-ticker.C():
	default:
		t.Fatal("did not tick after the clock advanced")
	}

	ticker.Stop()
	clock.Advance(time.Second)
	select {
	case <-ticker.C():
		t.Fatal("ticked after Stop")
	default:
	}
}

func TestMockTicker_Trigger(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	ticker := clock.NewTicker(time.Hour).(*MockTicker)

	now := clock.Now()
	ticker.Trigger(now)
	select {
	case got := <-ticker.C():
		if !got.Equal(now) {
			t.Errorf("got %v, want %v", got, now)
		}
	default:
		t.Fatal("Trigger did not deliver a tick")
	}
}
