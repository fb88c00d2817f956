package classify

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ridepulse-app/crashguard/internal/motion"
	"github.com/ridepulse-app/crashguard/internal/units"
)

// HeuristicConfig holds tuning parameters for the default classifier.
type HeuristicConfig struct {
	// MinFillRatio is the minimum window fill ratio before evaluation runs
	// (startup grace period).
	MinFillRatio float64
	// ProbabilityFloor suppresses assessments for clearly benign windows.
	ProbabilityFloor float64
	// ImpactScaleG is the peak-over-baseline acceleration excess (in g) at
	// which the impact score reaches ~0.63.
	ImpactScaleG float64
	// DecelScaleMps2 is the deceleration (m/s²) at which the sudden
	// deceleration score reaches ~0.63.
	DecelScaleMps2 float64
	// RolloverScaleRadps is the peak-over-baseline angular rate excess
	// (rad/s) at which the rollover score reaches ~0.63.
	RolloverScaleRadps float64
}

// DefaultHeuristicConfig returns the tuning used when no config is supplied.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		MinFillRatio:       0.5,
		ProbabilityFloor:   0.2,
		ImpactScaleG:       4.0,
		DecelScaleMps2:     12.0,
		RolloverScaleRadps: 6.0,
	}
}

// HeuristicClassifier scores windows with peak-over-baseline features mapped
// through monotone saturating curves. Three features are computed per window:
//
//   - impact: peak acceleration magnitude above the window's mean magnitude
//   - sudden deceleration: steepest speed drop between consecutive samples
//   - rollover: peak angular rate above the window's mean angular rate
//
// Each maps to a score via 1 - exp(-x/scale), which is strictly increasing in
// the feature, so a more extreme impulse over the same baseline always scores
// at least as high (monotonic sensitivity). The assessment probability is the
// maximum score; the kind is the feature that produced it, or KindUnknown when
// no feature clearly dominates. Only the provided window is consulted
// (windowed locality).
type HeuristicClassifier struct {
	cfg HeuristicConfig
}

// NewHeuristicClassifier creates the default classifier with the given tuning.
func NewHeuristicClassifier(cfg HeuristicConfig) *HeuristicClassifier {
	return &HeuristicClassifier{cfg: cfg}
}

// Evaluate scores the window. Returns nil when the window has too few samples,
// has not filled past MinFillRatio, or scores below ProbabilityFloor.
func (c *HeuristicClassifier) Evaluate(w motion.Window) (*Assessment, error) {
	samples := w.Samples()
	if len(samples) < 2 || w.FillRatio() < c.cfg.MinFillRatio {
		return nil, nil
	}

	accelMags := make([]float64, len(samples))
	gyroMags := make([]float64, len(samples))
	for i, s := range samples {
		accelMags[i] = s.AccelMagnitude()
		gyroMags[i] = s.GyroMagnitude()
	}

	impactScore := c.score(units.MPS2ToG(peakOverBaseline(accelMags)), c.cfg.ImpactScaleG)
	decelScore := c.score(peakDeceleration(samples), c.cfg.DecelScaleMps2)
	rolloverScore := c.score(peakOverBaseline(gyroMags), c.cfg.RolloverScaleRadps)

	kind, probability := dominantKind(impactScore, decelScore, rolloverScore)
	if probability < c.cfg.ProbabilityFloor {
		return nil, nil
	}

	newest, _ := w.Newest()
	return &Assessment{
		Kind:        kind,
		Probability: probability,
		Window:      w,
		ProducedAt:  newest.WallTime,
	}, nil
}

// score maps a non-negative feature value onto [0, 1) via a saturating
// exponential. Strictly increasing in x for fixed scale.
func (c *HeuristicClassifier) score(x, scale float64) float64 {
	if x <= 0 || scale <= 0 {
		return 0
	}
	return 1 - math.Exp(-x/scale)
}

// peakOverBaseline returns the excess of the series maximum over its mean.
// Non-negative by construction.
func peakOverBaseline(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	peak := xs[0]
	for _, x := range xs[1:] {
		if x > peak {
			peak = x
		}
	}
	return peak - stat.Mean(xs, nil)
}

// peakDeceleration returns the steepest speed drop between consecutive
// samples in m/s², or 0 when speed never decreases.
func peakDeceleration(samples []motion.MotionSample) float64 {
	var peak float64
	for i := 1; i < len(samples); i++ {
		dt := samples[i].WallTime.Sub(samples[i-1].WallTime).Seconds()
		if dt <= 0 {
			continue
		}
		drop := (samples[i-1].SpeedMps - samples[i].SpeedMps) / dt
		if drop > peak {
			peak = drop
		}
	}
	return peak
}

// dominantKindMargin is the score gap below which the winning feature is not
// considered a reliable classification and KindUnknown is reported instead.
const dominantKindMargin = 0.05

func dominantKind(impact, decel, rollover float64) (Kind, float64) {
	kind := KindImpact
	best, second := impact, math.Max(decel, rollover)
	if decel > best {
		kind, second = KindSuddenDeceleration, math.Max(impact, rollover)
		best = decel
	}
	if rollover > best {
		kind, second = KindRollover, math.Max(impact, decel)
		best = rollover
	}
	if best-second < dominantKindMargin {
		return KindUnknown, best
	}
	return kind, best
}
