package motion

import (
	"sort"
	"sync"
	"time"
)

// Buffer is a fixed-duration sliding window of motion samples. The newest
// sample anchors the window; anything older than the window duration relative
// to it is evicted on push. Samples arriving more than the skew tolerance
// behind the newest sample are silently dropped; out-of-order arrival inside
// the tolerance is expected jitter and is resolved by ordered insertion.
//
// The evaluation loop is the only writer; Snapshot hands read-only copies to
// the classifier so it never observes live mutation.
type Buffer struct {
	mu      sync.Mutex
	window  time.Duration
	skewTol time.Duration
	samples []MotionSample
}

// NewBuffer creates a buffer holding the given window of samples.
func NewBuffer(window, skewTolerance time.Duration) *Buffer {
	return &Buffer{
		window:  window,
		skewTol: skewTolerance,
	}
}

// Push appends a sample, evicting samples that fall outside the window
// relative to the newest timestamp. Out-of-order samples beyond the skew
// tolerance and duplicate timestamps are dropped without error; both are
// expected under normal jitter and never surfaced as failures.
func (b *Buffer) Push(s MotionSample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.samples)
	if n > 0 {
		newest := b.samples[n-1].WallTime
		if s.WallTime.Before(newest.Add(-b.skewTol)) {
			return // too stale to keep window invariants intact
		}

		// Ordered insert: find the first sample not before s.
		i := sort.Search(n, func(i int) bool {
			return !b.samples[i].WallTime.Before(s.WallTime)
		})
		if i < n && b.samples[i].WallTime.Equal(s.WallTime) {
			return // duplicate timestamp
		}
		b.samples = append(b.samples, MotionSample{})
		copy(b.samples[i+1:], b.samples[i:])
		b.samples[i] = s
	} else {
		b.samples = append(b.samples, s)
	}

	// Evict from the front relative to the (possibly unchanged) newest sample.
	cutoff := b.samples[len(b.samples)-1].WallTime.Add(-b.window)
	first := 0
	for first < len(b.samples) && b.samples[first].WallTime.Before(cutoff) {
		first++
	}
	if first > 0 {
		b.samples = append(b.samples[:0], b.samples[first:]...)
	}
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Snapshot returns an immutable copy of the current window. It never blocks
// producers beyond the duration of the copy.
func (b *Buffer) Snapshot() Window {
	b.mu.Lock()
	defer b.mu.Unlock()

	samples := make([]MotionSample, len(b.samples))
	copy(samples, b.samples)
	return Window{samples: samples, window: b.window}
}

// Window is a read-only snapshot of a Buffer at a point in time. The
// classifier may hold it indefinitely; it shares no state with the live
// buffer.
type Window struct {
	samples []MotionSample
	window  time.Duration
}

// NewWindow builds a snapshot directly from samples. Intended for tests and
// replay tooling; samples must already be ordered by WallTime.
func NewWindow(samples []MotionSample, window time.Duration) Window {
	copied := make([]MotionSample, len(samples))
	copy(copied, samples)
	return Window{samples: copied, window: window}
}

// Samples returns the ordered samples. Callers must not mutate the slice.
func (w Window) Samples() []MotionSample { return w.samples }

// Len returns the number of samples in the window.
func (w Window) Len() int { return len(w.samples) }

// Duration returns the configured window duration.
func (w Window) Duration() time.Duration { return w.window }

// Oldest returns the oldest sample and false when the window is empty.
func (w Window) Oldest() (MotionSample, bool) {
	if len(w.samples) == 0 {
		return MotionSample{}, false
	}
	return w.samples[0], true
}

// Newest returns the newest sample and false when the window is empty.
func (w Window) Newest() (MotionSample, bool) {
	if len(w.samples) == 0 {
		return MotionSample{}, false
	}
	return w.samples[len(w.samples)-1], true
}

// Span returns the time covered between the oldest and newest samples.
func (w Window) Span() time.Duration {
	if len(w.samples) < 2 {
		return 0
	}
	return w.samples[len(w.samples)-1].WallTime.Sub(w.samples[0].WallTime)
}

// FillRatio returns Span divided by the configured window duration, clamped
// to [0, 1]. Used by the classifier's startup grace period.
func (w Window) FillRatio() float64 {
	if w.window <= 0 {
		return 0
	}
	r := float64(w.Span()) / float64(w.window)
	if r > 1 {
		return 1
	}
	return r
}
