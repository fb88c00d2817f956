package escalate

import (
	"time"

	"github.com/ridepulse-app/crashguard/internal/timeutil"
)

// Countdown wraps an absolute wall-clock deadline. Display code may poll
// Remaining or subscribe to Ticks, but the authoritative expiry decision is
// always a direct comparison of the clock's now against the deadline, never
// a tick count. Drift or missed ticks cannot produce a stuck countdown, and
// a deadline that passed while the process was suspended is observed as
// expired on the first check after resume.
type Countdown struct {
	deadline time.Time
	clock    timeutil.Clock
}

// NewCountdown creates a countdown against the given deadline.
func NewCountdown(clock timeutil.Clock, deadline time.Time) Countdown {
	return Countdown{deadline: deadline, clock: clock}
}

// Deadline returns the absolute deadline.
func (c Countdown) Deadline() time.Time { return c.deadline }

// Remaining returns the duration until the deadline; zero or negative means
// expired.
func (c Countdown) Remaining() time.Duration {
	return c.clock.Until(c.deadline)
}

// Expired reports whether the deadline has been reached.
func (c Countdown) Expired() bool {
	return !c.clock.Now().Before(c.deadline)
}

// Ticks returns a periodic tick source for UI display. Callers must Stop it.
func (c Countdown) Ticks(period time.Duration) timeutil.Ticker {
	return c.clock.NewTicker(period)
}
