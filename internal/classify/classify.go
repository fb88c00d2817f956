// Package classify defines the crash classifier contract and the default
// heuristic implementation. The classifier is a pure function over a window
// snapshot: same window and parameters, same assessment, regardless of call
// history.
package classify

import (
	"time"

	"github.com/ridepulse-app/crashguard/internal/motion"
)

// Kind is the best-effort classification of a candidate crash.
type Kind string

const (
	KindImpact             Kind = "impact"
	KindSuddenDeceleration Kind = "sudden_deceleration"
	KindRollover           Kind = "rollover"
	KindUnknown            Kind = "unknown"
)

// Assessment is a candidate crash evaluation. Value type; never mutated after
// creation.
type Assessment struct {
	// Kind is a best-effort classification and may be KindUnknown.
	Kind Kind `json:"kind"`
	// Probability is the relative confidence in [0, 1] that the window
	// represents a crash.
	Probability float64 `json:"probability"`
	// Window is the snapshot that produced this assessment.
	Window motion.Window `json:"-"`
	// ProducedAt is the timestamp of the newest evidence behind this
	// assessment. The coordinator compares it against a prior session's
	// resolution time to decide whether the assessment counts as fresh.
	ProducedAt time.Time `json:"produced_at"`
}

// Classifier evaluates a window snapshot and produces an assessment, or nil
// when the window is not full enough to evaluate or the computed probability
// is below the configured floor. Implementations must be deterministic for a
// given window and must not retain or mutate the window.
type Classifier interface {
	Evaluate(w motion.Window) (*Assessment, error)
}
